package answer

import (
	"context"
	"errors"
	"testing"
)

func TestStub(t *testing.T) {
	got, err := Stub{}.Generate(context.Background(), " Hello World ")
	if err != nil {
		t.Fatal(err)
	}
	if got != "AI response for:  Hello World " {
		t.Errorf("unexpected answer: %q", got)
	}
}

func TestGeneratorFunc(t *testing.T) {
	wantErr := errors.New("upstream down")
	var g Generator = GeneratorFunc(func(context.Context, string) (string, error) {
		return "", wantErr
	})
	if _, err := g.Generate(context.Background(), "q"); !errors.Is(err, wantErr) {
		t.Errorf("expected %v, got %v", wantErr, err)
	}
}
