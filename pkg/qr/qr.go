// Package qr encodes principal identities into scannable payloads and parses
// whatever a scanner hands back. The logical payload shape is the contract;
// the PNG rendering is a convenience for clients.
package qr

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	TypeOwner    = "OWNER"
	TypeEmployee = "EMPLOYEE"
)

// Payload is the identity a principal's QR code carries.
type Payload struct {
	Type     string `json:"type"` // OWNER | EMPLOYEE
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	ShopName string `json:"shopName,omitempty"`
}

// EncodeDataURL renders the payload as a PNG data URL suitable for
// storing on the user/employee document and displaying directly.
func EncodeDataURL(p Payload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	png, err := qrcode.Encode(string(raw), qrcode.High, 512)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// Decoded is the best-effort identity candidate extracted from a scan.
// Type is "" when the payload carried no type hint.
type Decoded struct {
	IDCandidate string
	Type        string
	ShopName    string
	ProductName string
}

type jsonPayload struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	ShopName    string `json:"shopName"`
	ProductName string `json:"productName"`
}

// Decode parses an arbitrary scanned string. It never fails: structured JSON
// wins, then a URL's query id (id/memberId/userId) or last path segment,
// otherwise the whole string is treated as a raw id with no type hint.
// Validity of the candidate is the resolver's problem, not the codec's.
func Decode(raw string) Decoded {
	out := Decoded{IDCandidate: raw}

	var parsed jsonPayload
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		// "null" unmarshals cleanly into the struct; only a real object
		// counts as the structured form.
		if strings.HasPrefix(strings.TrimSpace(raw), "{") {
			if parsed.ID != "" {
				out.IDCandidate = parsed.ID
			}
			out.Type = parsed.Type
			out.ShopName = parsed.ShopName
			out.ProductName = parsed.ProductName
			return out
		}
	}

	if strings.HasPrefix(raw, "http") {
		if u, err := url.Parse(raw); err == nil {
			parts := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
			if len(parts) > 0 {
				out.IDCandidate = parts[len(parts)-1]
			}
			for _, key := range []string{"id", "memberId", "userId"} {
				if v := u.Query().Get(key); v != "" {
					out.IDCandidate = v
					break
				}
			}
		}
	}

	return out
}
