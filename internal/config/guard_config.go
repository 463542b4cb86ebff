package config

type GuardConfig interface {
	GetPublicPages() []string
	GetLoginPath() string
}

type Guard struct{}

func (Guard) GetPublicPages() []string {
	return []string{"/login", "/health"}
}
