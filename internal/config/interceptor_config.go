package config

type InterceptorConfig interface {
	GetProtectedPathMarkers() []string
	GetLoginPath() string
	GetLogoutOnAnyUnauthorized() bool
}

type Interceptor struct{}

var _ InterceptorConfig = Interceptor{}

// GetProtectedPathMarkers returns the substrings that mark a request as bound for the
// API or auth service
func (Interceptor) GetProtectedPathMarkers() []string {
	return []string{"/api/", "/auth/"}
}

func (Interceptor) GetLoginPath() string {
	return "/login"
}

// GetLogoutOnAnyUnauthorized reports whether a 401 on a request outside the protected
// paths also ends the session
func (Interceptor) GetLogoutOnAnyUnauthorized() bool {
	return GetBoolEnv("LOGOUT_ON_ANY_401", true)
}
