// internal/app/features/members/card_internal_test.go
package members

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestCardQR_ProducesInlinePNG(t *testing.T) {
	qr, err := cardQR("http://registry.example/members/68a1b2c3d4e5f60718293a4b")
	if err != nil {
		t.Fatalf("cardQR failed: %v", err)
	}

	s := string(qr)
	if !strings.HasPrefix(s, "data:image/png;base64,") {
		t.Fatalf("expected an inline PNG data URL, got %.40q", s)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, "data:image/png;base64,"))
	if err != nil {
		t.Fatalf("payload is not valid base64: %v", err)
	}
	if len(raw) < 8 || string(raw[1:4]) != "PNG" {
		t.Fatal("payload does not start with the PNG signature")
	}
}
