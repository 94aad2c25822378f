package llm

import (
	"strings"
	"testing"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestDetectImageMIME(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		filename string
		want     string
	}{
		{"sniffed png", pngHeader, "license.jpg", "image/png"},
		{"extension fallback", []byte("not an image"), "scan.webp", "image/webp"},
		{"default", []byte("not an image"), "scan.bin", "image/jpeg"},
		{"empty", nil, "", "image/jpeg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectImageMIME(tt.data, tt.filename); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDataURL(t *testing.T) {
	u := DataURL(Image{Data: []byte("hi"), MIMEType: "image/png"})
	if u != "data:image/png;base64,aGk=" {
		t.Fatalf("got %q", u)
	}
	if !strings.HasPrefix(DataURL(Image{Data: []byte("x")}), "data:image/jpeg;base64,") {
		t.Fatal("expected jpeg default")
	}
}

func TestPrompts(t *testing.T) {
	text := BuildTextPrompt("Bob Johnson, 789 Pine St")
	for _, want := range []string{`"zip_code"`, `"phone_number"`, "Never fabricate", "Bob Johnson, 789 Pine St"} {
		if !strings.Contains(text, want) {
			t.Errorf("text prompt missing %q", want)
		}
	}
	img := BuildImagePrompt()
	for _, want := range []string{"DOB", "LIC#", "EXP", "EYES", "HGT", `"documentNumber"`} {
		if !strings.Contains(img, want) {
			t.Errorf("image prompt missing %q", want)
		}
	}
	retry := BuildRetryPrompt("driver's license data", IDDocumentTemplate, "")
	if !strings.HasPrefix(retry, "The previous response was not valid JSON.") || !strings.Contains(retry, `"fullName"`) {
		t.Errorf("unexpected retry prompt %q", retry)
	}
	if strings.Contains(retry, "Text to parse:") {
		t.Error("image retry prompt must not carry a text section")
	}
	if textRetry := BuildRetryPrompt("personal information", PersonTemplate, "Jim Croce"); !strings.HasSuffix(textRetry, "Text to parse: Jim Croce") {
		t.Errorf("text retry prompt must repeat the input: %q", textRetry)
	}
	if !strings.Contains(BuildFocusedPrompt([]string{"eyeColor"}), "Previously missing: eyeColor") {
		t.Error("focused prompt should name missing fields")
	}
}
