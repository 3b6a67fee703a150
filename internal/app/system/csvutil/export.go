// Package csvutil renders member exports as CSV.
package csvutil

import (
	"encoding/csv"
	"io"

	"github.com/meskelsoft/partyreg/internal/domain/models"
)

// utf8BOM makes Excel detect UTF-8 so the Amharic headers and names render
// correctly when the file is double-clicked.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// memberHeaders are the export column headers, in Amharic.
var memberHeaders = []string{
	"ሙሉ ስም",          // full name
	"የአባልነት መለያ",    // membership id
	"ስልክ ቁጥር",        // phone number
	"ጾታ",             // gender
	"ክልል",            // region
	"የተቀላቀለበት ቀን", // join date
}

// dateLayout is how join dates appear in exports.
const dateLayout = "2006-01-02"

// WriteMembers streams members as a CSV document, BOM and header first.
func WriteMembers(w io.Writer, members []models.Member) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(memberHeaders); err != nil {
		return err
	}
	for _, m := range members {
		rec := []string{
			m.FullName,
			m.MembershipID,
			m.Phone,
			m.Gender,
			m.Region,
			m.JoinDate.Format(dateLayout),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
