// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestListenPort_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		port    ListenPort
		wantErr bool
	}{
		{0, false},
		{1, false},
		{8000, false},
		{65535, false},
		{-1, true},
		{65536, true},
	}

	for _, tt := range tests {
		t.Run(tt.port.String(), func(t *testing.T) {
			t.Parallel()
			err := tt.port.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ListenPort(%d).Validate() error = %v, wantErr %v", tt.port, err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, ErrInvalidListenPort) {
				t.Errorf("error should wrap ErrInvalidListenPort, got: %v", err)
			}
			var lpErr *InvalidListenPortError
			if !errors.As(err, &lpErr) {
				t.Errorf("error should be *InvalidListenPortError, got: %T", err)
			}
		})
	}
}

func TestListenPort_Addr(t *testing.T) {
	t.Parallel()

	if got := ListenPort(8000).Addr("127.0.0.1"); got != "127.0.0.1:8000" {
		t.Errorf("Addr() = %q, want %q", got, "127.0.0.1:8000")
	}
	if got := ListenPort(8000).Addr("::1"); got != "[::1]:8000" {
		t.Errorf("Addr() = %q, want %q", got, "[::1]:8000")
	}
	if ListenPort(0).IsChosen() {
		t.Error("zero port should not be chosen")
	}
}
