package keying

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"foo", "foo"},
		{" Foo ", "foo"},
		{"\tHello World\n", "hello world"},
		{"HELLO  WORLD", "hello  world"},
		{"Ünïcode Straße", "ünïcode straße"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"", " a ", "MiXeD Case", "\n\ttabs and newlines\r\n", "ǅ titlecase"}
	for _, s := range inputs {
		once := Normalize(s)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", s, once, twice)
		}
	}
}

func TestNormalizeEquivalence(t *testing.T) {
	variants := []string{"Hello World", " hello world ", "HELLO WORLD"}
	want := Normalize(variants[0])
	for _, v := range variants[1:] {
		if got := Normalize(v); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", v, got, want)
		}
	}
	if Normalize(" Foo ") != Normalize("foo") {
		t.Error("expected \" Foo \" and \"foo\" to share a key")
	}
}
