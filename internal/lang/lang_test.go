package lang

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"src/app.js", JavaScript},
		{"src/App.tsx", TypeScript},
		{"Main.java", Java},
		{"index.php", PHP},
		{"scripts/run.py", Python},
		{"lib/parse.c", C},
		{"cmd/main.go", Go},
		{"app/models/user.rb", Ruby},
		{"Service.cs", CSharp},
		{"config/app.yaml", Config},
		{"Dockerfile", Config},
		{".env", Config},
		{"photo.PNG", ""},
		{"README", ""},
	}
	for _, tt := range tests {
		if got := Detect(tt.path); got != tt.want {
			t.Errorf("Detect(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestNormalizeAliases(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"JS", JavaScript},
		{"nodejs", JavaScript},
		{"py", Python},
		{"c++", C},
		{"golang", Go},
		{"c#", CSharp},
		{"php", PHP},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKnown(t *testing.T) {
	if !Known(Wildcard) {
		t.Fatal("wildcard must be known")
	}
	if !Known("javascript") {
		t.Fatal("javascript must be known")
	}
	if Known("cobol") {
		t.Fatal("cobol is not a supported tag")
	}
}
