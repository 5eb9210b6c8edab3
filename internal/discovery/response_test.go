package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Captured from a Roku Express (firmware 12.5)
const realReply = "HTTP/1.1 200 OK\r\n" +
	"Cache-Control: max-age=3600\r\n" +
	"ST: roku:ecp\r\n" +
	"Location: http://192.168.1.134:8060/\r\n" +
	"USN: uuid:roku:ecp:YH009E000000\r\n" +
	"Ext: \r\n" +
	"Server: Roku/12.5.0 UPnP/1.0 Roku/12.5.0\r\n" +
	"\r\n"

func TestParseResponse_FieldExtraction(t *testing.T) {
	data := "HTTP/1.1 200 OK\n" +
		"ST: roku:ecp\n" +
		"LOCATION: http://10.0.0.5:8060/\n" +
		"USN: uuid:ABC123::roku:ecp\n"

	resp, err := ParseResponse([]byte(data))
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, "http://10.0.0.5:8060/", resp.Location)
	assert.Equal(t, "uuid:ABC123::roku:ecp", resp.USN)
	assert.Equal(t, "roku:ecp", resp.SearchTarget)
}

func TestParseResponse_RealDevice(t *testing.T) {
	resp, err := ParseResponse([]byte(realReply))
	require.NoError(t, err)

	assert.Equal(t, "http://192.168.1.134:8060/", resp.Location)
	assert.Equal(t, "uuid:roku:ecp:YH009E000000", resp.USN)
}

func TestParseResponse_StatusLine(t *testing.T) {
	body := "ST: roku:ecp\nLOCATION: http://10.0.0.5:8060/\nUSN: uuid:ABC123\n"

	tests := []struct {
		name   string
		status string
		wantOK bool
	}{
		{"exact", "HTTP/1.1 200 OK", true},
		{"surrounding whitespace", "  HTTP/1.1 200 OK \r", true},
		{"notify", "NOTIFY * HTTP/1.1", false},
		{"m-search echo", "M-SEARCH * HTTP/1.1", false},
		{"not found", "HTTP/1.1 404 Not Found", false},
		{"http 1.0", "HTTP/1.0 200 OK", false},
		{"lower case", "http/1.1 200 ok", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := ParseResponse([]byte(tt.status + "\n" + body))
			if tt.wantOK {
				require.NoError(t, err)
				assert.NotNil(t, resp)
				return
			}
			assert.Nil(t, resp)
			assert.True(t, IsUnparseableReply(err), "err = %v", err)
		})
	}
}

func TestParseResponse_SearchTarget(t *testing.T) {
	tests := []struct {
		name   string
		st     string
		wantOK bool
	}{
		{"ecp", "ST: roku:ecp", true},
		{"upper case value", "ST: ROKU:ECP", true},
		{"lower case key", "st: roku:ecp", true},
		{"padded", "ST:    roku:ecp   ", true},
		{"dial", "ST: urn:dial-multiscreen-org:service:dial:1", false},
		{"root device", "ST: upnp:rootdevice", false},
		{"prefix only", "ST: roku", false},
		{"absent", "X-Other: roku:ecp", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := "HTTP/1.1 200 OK\n" + tt.st + "\nLOCATION: http://10.0.0.5:8060/\nUSN: uuid:ABC123\n"
			resp, err := ParseResponse([]byte(data))
			if tt.wantOK {
				require.NoError(t, err)
				assert.Equal(t, "http://10.0.0.5:8060/", resp.Location)
				return
			}
			assert.Nil(t, resp)
			assert.True(t, IsUnparseableReply(err), "err = %v", err)
		})
	}
}

func TestParseResponse_MismatchedTargetStopsParsing(t *testing.T) {
	// A later valid ST line must not rescue a reply for another device class.
	data := "HTTP/1.1 200 OK\n" +
		"ST: upnp:rootdevice\n" +
		"ST: roku:ecp\n" +
		"LOCATION: http://10.0.0.5:8060/\n"

	resp, err := ParseResponse([]byte(data))
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrUnparseableReply)
}

func TestParseResponse_MalformedLines(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"no colon", "NoColonHere"},
		{"leading colon", ":leading-colon"},
		{"trailing colon", "Trailing:"},
		{"too short", "a:"},
		{"two bytes", "ab"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := "HTTP/1.1 200 OK\n" +
				tt.line + "\n" +
				"ST: roku:ecp\n" +
				tt.line + "\n" +
				"LOCATION: http://10.0.0.5:8060/\n" +
				"USN: uuid:ABC123::roku:ecp\n"

			resp, err := ParseResponse([]byte(data))
			require.NoError(t, err)
			assert.Equal(t, "http://10.0.0.5:8060/", resp.Location)
			assert.Equal(t, "uuid:ABC123::roku:ecp", resp.USN)
		})
	}
}

func TestParseResponse_MissingFields(t *testing.T) {
	resp, err := ParseResponse([]byte("HTTP/1.1 200 OK\nST: roku:ecp\n"))
	require.NoError(t, err)

	assert.Empty(t, resp.Location)
	assert.Empty(t, resp.USN)
	assert.False(t, resp.Matches(""), "a reply without location must not match")
}

func TestParseResponse_ValueKeepsCase(t *testing.T) {
	data := "HTTP/1.1 200 OK\nST: roku:ecp\nLocation: HTTP://Roku.LAN:8060/\nUsn: UUID:Roku:ECP:YH009\n"

	resp, err := ParseResponse([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, "HTTP://Roku.LAN:8060/", resp.Location)
	assert.Equal(t, "UUID:Roku:ECP:YH009", resp.USN)
}

func TestParseResponseFor_CustomTarget(t *testing.T) {
	data := "HTTP/1.1 200 OK\nST: upnp:rootdevice\nLOCATION: http://10.0.0.9:1400/xml/device_description.xml\n"

	resp, err := ParseResponseFor([]byte(data), "upnp:rootdevice")
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.9:1400/xml/device_description.xml", resp.Location)

	_, err = ParseResponse([]byte(data))
	assert.Error(t, err)
}

func TestResponse_Matches(t *testing.T) {
	resp := &Response{
		Location: "http://10.0.0.5:8060/",
		USN:      "uuid:ABC123::roku:ecp",
	}

	tests := []struct {
		identity string
		want     bool
	}{
		{"", true},
		{"ABC123", true},
		{"ABC", true},
		{"roku:ecp", true},
		{"XYZ999", false},
		{"abc123", false}, // identity matching is case-sensitive
	}

	for _, tt := range tests {
		t.Run(tt.identity, func(t *testing.T) {
			assert.Equal(t, tt.want, resp.Matches(tt.identity))
		})
	}
}
