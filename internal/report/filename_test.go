package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFileName(t *testing.T) {
	at := time.Date(2024, 3, 15, 9, 4, 5, 0, time.UTC)
	tests := []struct {
		client string
		want   string
	}{
		{client: "ACME", want: "hose-inspection_ACME_20240315-090405.pdf"},
		{client: "Açúcar & Álcool S/A", want: "hose-inspection_Acucar_Alcool_S_A_20240315-090405.pdf"},
		{client: "  Petro-Sul  ", want: "hose-inspection_Petro-Sul_20240315-090405.pdf"},
		{client: "", want: "hose-inspection_client_20240315-090405.pdf"},
		{client: "../../etc/passwd", want: "hose-inspection_etc_passwd_20240315-090405.pdf"},
		{client: "東京", want: "hose-inspection_client_20240315-090405.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.client, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.client, at))
		})
	}
}

func TestFileName_LongClientIsTruncated(t *testing.T) {
	long := ""
	for i := 0; i < 20; i++ {
		long += "Refinaria "
	}
	name := FileName(long, time.Unix(0, 0).UTC())
	assert.LessOrEqual(t, len(name), len("hose-inspection__19700101-000000.pdf")+maxClientLen)
}
