package ui

import (
	"fmt"
	"net/http"
)

const (
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	Gray    = "\033[90m" // Bright black, often appears as gray

	RedInverse   = "\033[7;31m"
	GreenInverse = "\033[7;32m"

	ResetColor = "\033[0m"
)

var MethodColors = map[string]string{
	"GET":    Green,
	"POST":   Blue,
	"PUT":    Cyan,
	"DELETE": Yellow,
	"PATCH":  Magenta,
}

// RequestLine renders a request the way the CLI prints it in DEV:
// a coloured, padded method, the URL and the response status.
func RequestLine(method, url string, status int) string {
	return fmt.Sprintf("[%-19s] %s %s", colourMethod(method), url, colourStatus(status))
}

// ErrorLine renders a failed request with the error in red
func ErrorLine(method, url string, err error) string {
	return fmt.Sprintf("[%-19s] %s %s", colourMethod(method), url, Red+err.Error()+ResetColor)
}

func colourMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := MethodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}

func colourStatus(status int) string {
	text := fmt.Sprintf("%d %s", status, http.StatusText(status))
	switch {
	case status >= 500:
		return RedInverse + text + ResetColor
	case status >= 400:
		return Red + text + ResetColor
	case status >= 300:
		return Yellow + text + ResetColor
	default:
		return GreenInverse + text + ResetColor
	}
}
