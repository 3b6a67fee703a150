// internal/app/features/members/card.go
package members

import (
	"encoding/base64"
	"html/template"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/meskelsoft/partyreg/internal/app/system/viewdata"
)

type cardData struct {
	viewdata.BaseVM

	MemberID     string
	FullName     string
	MembershipID string
	Region       string
	Level        string
	JoinDate     string
	// Inline PNG data URL so the printed card is self-contained.
	QRImage template.URL
}

// cardQR encodes the member-detail URL as an inline PNG data URL.
func cardQR(target string) (template.URL, error) {
	png, err := qrcode.Encode(target, qrcode.Medium, 192)
	if err != nil {
		return "", err
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)), nil
}

// ServeCard handles GET /members/{id}/card: a printable membership card.
// Scanning the QR code opens the member's detail page, which is how
// attendance staff verify a card against the registry.
func (h *Handler) ServeCard(w http.ResponseWriter, r *http.Request) {
	member := h.loadMember(w, r)
	if member == nil {
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	qr, err := cardQR(scheme + "://" + r.Host + "/members/" + member.ID.Hex())
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "")
		return
	}

	vm := cardData{
		BaseVM:       viewdata.NewBaseVM(r, "የአባልነት መታወቂያ", "/members/"+member.ID.Hex()),
		MemberID:     member.ID.Hex(),
		FullName:     member.FullName,
		MembershipID: member.MembershipID,
		Region:       member.Region,
		Level:        member.Level,
		JoinDate:     member.JoinDate.Format(dateLayout),
		QRImage:      qr,
	}
	templates.Render(w, r, "members/card", vm)
}
