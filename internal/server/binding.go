package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindMessages maps struct field -> validator tag -> player-facing message.
type bindMessages map[string]map[string]string

func bindJSON(c *gin.Context, req any, messages bindMessages, fallback string) bool {
	return bindWith(c, c.ShouldBindJSON, req, messages, fallback)
}

func bindQuery(c *gin.Context, req any, messages bindMessages, fallback string) bool {
	return bindWith(c, c.ShouldBindQuery, req, messages, fallback)
}

func bindWith(c *gin.Context, bind func(any) error, req any, messages bindMessages, fallback string) bool {
	err := bind(req)
	if err == nil {
		return true
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err, messages, fallback)})
	return false
}

func bindErrorMessage(err error, messages bindMessages, fallback string) string {
	var (
		verrs     validator.ValidationErrors
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &verrs):
		for _, verr := range verrs {
			if msg, ok := messages[verr.Field()][verr.Tag()]; ok {
				return msg
			}
		}
	case errors.Is(err, io.EOF), errors.As(err, &syntaxErr):
		return "request body must be a JSON object"
	case errors.As(err, &typeErr):
		return typeErr.Field + " has the wrong type"
	}
	if fallback != "" {
		return fallback
	}
	return "invalid request"
}
