package generation

import (
	"context"
	"errors"
	"fmt"
)

var ErrEmptyOutput = errors.New("generator returned empty output")

type Request struct {
	ActionKind string
	Input      string
}

// Generator - внешняя генерация текста, для биллинга это черный ящик
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc позволяет использовать функцию как Generator
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// EchoGenerator - для локальной разработки без ключа API
type EchoGenerator struct{}

func (EchoGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("[%s] %s", req.ActionKind, req.Input), nil
}
