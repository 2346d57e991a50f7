package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPublicAddr(t *testing.T) {
	tests := []struct {
		addr    string
		allowed bool
	}{
		{"127.0.0.1", false},
		{"10.0.0.5", false},
		{"172.16.3.4", false},
		{"192.168.1.1", false},
		{"169.254.169.254", false},
		{"100.64.0.1", false},
		{"0.0.0.0", false},
		{"224.0.0.1", false},
		{"::1", false},
		{"fe80::1", false},
		{"fd00:ec2::254", false},
		{"::ffff:127.0.0.1", false},
		{"::ffff:10.1.2.3", false},
		{"93.184.216.34", true},
		{"2606:4700:4700::1111", true},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			err := checkPublicAddr(netip.MustParseAddr(tt.addr))
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrForbiddenAddress)
			}
		})
	}
}

func TestPublicOnly_RejectsHostnames(t *testing.T) {
	// The dialer only ever sees resolved addresses; anything else is refused.
	assert.ErrorIs(t, publicOnly("tcp", "localhost:80", nil), ErrForbiddenAddress)
	assert.Error(t, publicOnly("tcp", "no-port", nil))
	assert.NoError(t, publicOnly("tcp", "93.184.216.34:443", nil))
}

func TestPage_RefusesNonPublicAddresses(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("<html><body>AWS_SECRET_ACCESS_KEY=internal-only</body></html>"))
	}))
	defer server.Close()

	urls := []string{
		server.URL + "/latest/meta-data",
		"http://10.20.30.40/internal",
		"http://169.254.169.254/latest/meta-data",
		"http://[::1]:8080/",
	}
	f := New(nil, nil, nil)
	for _, u := range urls {
		t.Run(u, func(t *testing.T) {
			text, err := f.JobDescription(context.Background(), u)
			require.Error(t, err)
			assert.Empty(t, text)
			assert.ErrorIs(t, err, ErrForbiddenAddress)

			var fetchErr *Error
			require.ErrorAs(t, err, &fetchErr)
			assert.Contains(t, fetchErr.Message, "public address")
		})
	}
	assert.Equal(t, int32(0), hits.Load())
}
