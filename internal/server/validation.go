package server

import (
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/kira8ke/GloHub/internal/game"
)

const (
	maxNameLength     = 20
	maxGameNameLength = 60
	maxIDLength       = 64
)

var validatorOnce sync.Once

// fieldRules backs the custom binding tags used by request structs.
var fieldRules = map[string]func(string) bool{
	"name": func(v string) bool {
		_, err := validateName(v)
		return err == nil
	},
	"gamename": func(v string) bool {
		_, err := validateGameName(v)
		return err == nil
	},
	"action": func(v string) bool {
		_, err := game.ParseAction(v)
		return err == nil
	},
	"joincode": func(v string) bool {
		return game.ValidJoinCode(game.NormalizeCode(v))
	},
}

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		for tag, rule := range fieldRules {
			_ = engine.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
				return rule(fl.Field().String())
			})
		}
	})
}

func validateName(name string) (string, error) {
	return validateText("name", name, maxNameLength)
}

// validateGameName allows an empty name; the coordinator supplies a default.
func validateGameName(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", nil
	}
	return validateText("game name", name, maxGameNameLength)
}

func validateID(label, id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", fmt.Errorf("%s is required", label)
	}
	if len(trimmed) > maxIDLength {
		return "", fmt.Errorf("%s is too long", label)
	}
	return trimmed, nil
}

func validateText(label, text string, maxLen int) (string, error) {
	trimmed := normalizeText(text)
	if trimmed == "" {
		return "", fmt.Errorf("%s is required", label)
	}
	if utf8.RuneCountInString(trimmed) > maxLen {
		return "", fmt.Errorf("%s must be %d characters or fewer", label, maxLen)
	}
	if !isSafeText(trimmed) {
		return "", fmt.Errorf("%s contains unsupported characters", label)
	}
	return trimmed, nil
}

func normalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

const allowedPunct = " -_'.!?&"

// isSafeText admits letters and digits in any script plus a little
// punctuation. Markup and control characters are rejected.
func isSafeText(text string) bool {
	return strings.IndexFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune(allowedPunct, r)
	}) < 0
}
