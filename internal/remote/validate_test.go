package remote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shellgate/shellgate/internal/domain"
	"github.com/shellgate/shellgate/internal/logger"
)

func TestCheckLogin(t *testing.T) {
	tests := []struct {
		name    string
		dialErr error
		want    bool
	}{
		{
			name:    "valid credentials",
			dialErr: nil,
			want:    true,
		},
		{
			name:    "refused login",
			dialErr: &domain.AuthError{Address: "10.0.0.1", Err: errors.New("unable to authenticate")},
			want:    false,
		},
		{
			name:    "unreachable host",
			dialErr: &domain.TransportError{Op: "dial", Address: "10.0.0.1", Err: errors.New("connection refused")},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &fakeConn{}
			dialer := &fakeDialer{conn: conn, dialErr: tt.dialErr}
			checker := NewChecker(dialer, logger.New("error", false))

			got := checker.CheckLogin(context.Background(), "10.0.0.1", "root", "hunter2", time.Second)
			if got != tt.want {
				t.Errorf("CheckLogin() = %v, want %v", got, tt.want)
			}

			if got := dialer.dialCount(); got != 1 {
				t.Errorf("dial count = %v, want 1", got)
			}
			// A successful probe is throwaway, the connection never leaks.
			if tt.want && !conn.closed {
				t.Error("probe connection was not closed")
			}
		})
	}
}
