// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Completion service error categorization

package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Category classifies a completion service failure
type Category int

const (
	CategoryUnknown Category = iota
	CategoryRateLimited
	CategoryAuth
	CategoryQuota
	CategoryContentFiltered
)

func (c Category) String() string {
	switch c {
	case CategoryRateLimited:
		return "rate_limited"
	case CategoryAuth:
		return "auth"
	case CategoryQuota:
		return "quota"
	case CategoryContentFiltered:
		return "content_filtered"
	default:
		return "unknown"
	}
}

// ServiceError is a categorized completion failure. Error() is the message shown to the user.
type ServiceError struct {
	Category Category
	Err      error
}

func (e *ServiceError) Error() string {
	switch e.Category {
	case CategoryRateLimited:
		return "The service is temporarily overloaded, please try again later."
	case CategoryAuth:
		return "The API key was rejected, please check your configuration."
	case CategoryQuota:
		return "The API quota is exhausted, please top up or contact your administrator."
	case CategoryContentFiltered:
		return "The content was filtered, please try a different question."
	default:
		return fmt.Sprintf("Error while processing the request: %v", e.Err)
	}
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Categorize wraps err into a ServiceError. A nil err stays nil.
func Categorize(err error) *ServiceError {
	if err == nil {
		return nil
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	return &ServiceError{Category: categoryOf(err), Err: err}
}

func categoryOf(err error) Category {
	status := 0
	code := ""
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
		code = fmt.Sprint(apiErr.Code) + " " + apiErr.Type
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case http.StatusTooManyRequests:
		if looksLikeQuota(code) {
			return CategoryQuota
		}
		return CategoryRateLimited
	case http.StatusUnauthorized:
		return CategoryAuth
	case http.StatusPaymentRequired:
		return CategoryQuota
	}

	msg := strings.ToLower(err.Error() + " " + code)
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "overload"):
		return CategoryRateLimited
	case strings.Contains(msg, "401") || strings.Contains(msg, "auth"):
		return CategoryAuth
	case looksLikeQuota(msg):
		return CategoryQuota
	case strings.Contains(msg, "content_filter"):
		return CategoryContentFiltered
	}
	return CategoryUnknown
}

func looksLikeQuota(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "quota") || strings.Contains(s, "balance")
}
