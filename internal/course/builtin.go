package course

import (
	_ "embed"
	"fmt"
)

//go:embed default.yaml
var defaultCourse []byte

// Default returns the built-in training course.
func Default() *Course {
	c, err := Parse(defaultCourse)
	if err != nil {
		panic(fmt.Sprintf("built-in course: %v", err))
	}
	return c
}

// LoadOrDefault loads path, or the built-in course when path is empty.
func LoadOrDefault(path string) (*Course, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
