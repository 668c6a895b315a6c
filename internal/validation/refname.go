package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidName indicates a branch, tag or author name that does not pass validation
var ErrInvalidName = errors.New("invalid name")

// RefNamePattern определяет допустимый формат имени ветки или тега.
// Латинские буквы, цифры, точка, дефис, подчеркивание и слэш-разделитель
// сегментов (feature/login). Первый символ - буква или цифра.
var RefNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._\-/]*$`)

const (
	// MaxRefNameLen максимальная длина имени ветки или тега
	MaxRefNameLen = 100
	// MaxAuthorLen максимальная длина имени автора коммита
	MaxAuthorLen = 128
)

// ValidateRefName проверяет имя ветки или тега.
// Запрещены пустые сегменты ("a//b"), завершающий слэш, ".." и суффикс ".lock".
func ValidateRefName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}

	if len(name) > MaxRefNameLen {
		return fmt.Errorf("%w: name must not exceed %d characters", ErrInvalidName, MaxRefNameLen)
	}

	if !RefNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q can only contain letters, numbers, '.', '-', '_' and '/'", ErrInvalidName, name)
	}

	if strings.Contains(name, "..") || strings.Contains(name, "//") ||
		strings.HasSuffix(name, "/") || strings.HasSuffix(name, ".lock") {
		return fmt.Errorf("%w: %q is not a valid reference name", ErrInvalidName, name)
	}

	return nil
}

// ValidateAuthor проверяет имя автора коммита: непустое, без управляющих символов.
func ValidateAuthor(author string) error {
	if strings.TrimSpace(author) == "" {
		return fmt.Errorf("%w: author cannot be empty", ErrInvalidName)
	}

	if len(author) > MaxAuthorLen {
		return fmt.Errorf("%w: author must not exceed %d characters", ErrInvalidName, MaxAuthorLen)
	}

	if strings.ContainsFunc(author, func(r rune) bool { return r < 0x20 || r == 0x7f }) {
		return fmt.Errorf("%w: author contains control characters", ErrInvalidName)
	}

	return nil
}
