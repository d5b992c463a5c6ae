package qr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDataURL(t *testing.T) {
	url, err := EncodeDataURL(Payload{
		Type:     TypeOwner,
		ID:       "64b000000000000000000001",
		Name:     "Ravi",
		ShopName: "Ravi Stores",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))
}

func TestDecodeStructuredPayload(t *testing.T) {
	d := Decode(`{"id":"abc123","type":"OWNER","shopName":"Ravi Stores"}`)
	assert.Equal(t, "abc123", d.IDCandidate)
	assert.Equal(t, TypeOwner, d.Type)
	assert.Equal(t, "Ravi Stores", d.ShopName)
}

func TestDecodeJSONWithoutID(t *testing.T) {
	// structured but id-less payloads keep the raw string as candidate
	raw := `{"type":"EMPLOYEE","shopName":"S"}`
	d := Decode(raw)
	assert.Equal(t, raw, d.IDCandidate)
	assert.Equal(t, TypeEmployee, d.Type)
}

func TestDecodeURLQueryBeatsPathSegment(t *testing.T) {
	d := Decode("https://app.example.com/scan/pathid?id=queryid")
	assert.Equal(t, "queryid", d.IDCandidate)
	assert.Empty(t, d.Type)
}

func TestDecodeURLFallsBackToLastPathSegment(t *testing.T) {
	d := Decode("https://app.example.com/member/64b000000000000000000001")
	assert.Equal(t, "64b000000000000000000001", d.IDCandidate)
}

func TestDecodeURLMemberIdAndUserIdParams(t *testing.T) {
	d := Decode("https://x.example/scan?memberId=m1")
	assert.Equal(t, "m1", d.IDCandidate)

	d = Decode("https://x.example/scan?userId=u1")
	assert.Equal(t, "u1", d.IDCandidate)

	// id outranks the other parameter names
	d = Decode("https://x.example/scan?userId=u1&id=i1")
	assert.Equal(t, "i1", d.IDCandidate)
}

func TestDecodeRawIDPassesThrough(t *testing.T) {
	d := Decode("64b000000000000000000001")
	assert.Equal(t, "64b000000000000000000001", d.IDCandidate)
	assert.Empty(t, d.Type)
}

func TestDecodeIsTotalOnGarbage(t *testing.T) {
	for _, raw := range []string{"", "null", "{{{", "http://%zz", "   ", `{"broken`} {
		d := Decode(raw)
		assert.Equal(t, raw, d.IDCandidate, "garbage input %q must pass through", raw)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	// the logical payload is the contract; a decoder that scans the PNG
	// would see exactly this JSON
	p := Payload{Type: TypeEmployee, ID: "64b000000000000000000009", Name: "Sita", ShopName: "Sita Textiles"}
	d := Decode(`{"type":"EMPLOYEE","id":"64b000000000000000000009","name":"Sita","shopName":"Sita Textiles"}`)
	assert.Equal(t, p.ID, d.IDCandidate)
	assert.Equal(t, p.Type, d.Type)
	assert.Equal(t, p.ShopName, d.ShopName)
}
