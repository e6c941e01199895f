package imap

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

const multipartMessage = "From: Linda Tours Mumbai <bookings@example.com>\r\n" +
	"Subject: Booking confirmed\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/mixed; boundary=outer\r\n" +
	"\r\n" +
	"--outer\r\n" +
	"Content-Type: multipart/alternative; boundary=inner\r\n" +
	"\r\n" +
	"--inner\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"Content-Transfer-Encoding: quoted-printable\r\n" +
	"\r\n" +
	"Booking Reference: #AB123\r\n" +
	"Location: Mumbai Harbour =\r\n" +
	"Cruise\r\n" +
	"--inner\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"Content-Transfer-Encoding: base64\r\n" +
	"\r\n" +
	"PHA+Qm9va2luZyBSZWZlcmVuY2U6ICNBQjEyMzwvcD4=\r\n" +
	"--inner--\r\n" +
	"--outer\r\n" +
	"Content-Type: application/pdf\r\n" +
	"Content-Disposition: attachment; filename=voucher.pdf\r\n" +
	"\r\n" +
	"%PDF-1.4\r\n" +
	"--outer--\r\n"

func TestExtractBodiesFromRaw(t *testing.T) {
	text, html, err := extractBodiesFromRaw([]byte(multipartMessage))
	be.Err(t, err, nil)
	be.True(t, strings.Contains(text, "Booking Reference: #AB123"))
	be.True(t, strings.Contains(text, "Location: Mumbai Harbour Cruise"))
	be.Equal(t, html, "<p>Booking Reference: #AB123</p>")
}

func TestExtractBodiesPlainDefault(t *testing.T) {
	raw := "Subject: hi\r\n\r\nStatus: confirmed\r\n"
	text, html, err := extractBodiesFromRaw([]byte(raw))
	be.Err(t, err, nil)
	be.Equal(t, text, "Status: confirmed")
	be.Equal(t, html, "")
}

func TestNewestUIDs(t *testing.T) {
	be.Equal(t, newestUIDs([]uint32{3, 9, 1, 7}, 2), []uint32{9, 7})
	be.Equal(t, newestUIDs([]uint32{3, 1}, 10), []uint32{3, 1})
	be.Equal(t, len(newestUIDs(nil, 5)), 0)
}

func TestBuildSearchCriteria(t *testing.T) {
	criteria := buildSearchCriteria(" Linda Tours Mumbai ")
	be.Equal(t, criteria.Header.Get("From"), "Linda Tours Mumbai")

	empty := buildSearchCriteria("")
	be.Equal(t, len(empty.Header), 0)
}
