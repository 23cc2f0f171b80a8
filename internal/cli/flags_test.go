package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kovar/sps5000x/internal/config"
	"github.com/kovar/sps5000x/internal/errors"
)

func TestParseDurationFlag(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		want    time.Duration
		wantErr bool
	}{
		{
			name:    "empty string returns zero",
			flag:    "",
			want:    0,
			wantErr: false,
		},
		{
			name:    "valid seconds",
			flag:    "5s",
			want:    5 * time.Second,
			wantErr: false,
		},
		{
			name:    "valid milliseconds",
			flag:    "500ms",
			want:    500 * time.Millisecond,
			wantErr: false,
		},
		{
			name:    "valid complex duration",
			flag:    "1m30s",
			want:    90 * time.Second,
			wantErr: false,
		},
		{
			name:    "bare number returns error",
			flag:    "5",
			wantErr: true,
		},
		{
			name:    "nonsense returns error",
			flag:    "fast",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDurationFlag(tt.flag, "interval")
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyInstrumentFlags(t *testing.T) {
	t.Run("overrides layer onto config", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Instrument.Address = "tcp://10.0.0.5:5025"

		applyInstrumentFlags(cfg, "tcp://10.0.0.9:5025", 2)

		assert.Equal(t, "tcp://10.0.0.9:5025", cfg.Instrument.Address)
		assert.Equal(t, 2, cfg.Instrument.Channels)
	})

	t.Run("zero values leave config untouched", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Instrument.Address = "tcp://10.0.0.5:5025"
		cfg.Instrument.Channels = 3

		applyInstrumentFlags(cfg, "", 0)

		assert.Equal(t, "tcp://10.0.0.5:5025", cfg.Instrument.Address)
		assert.Equal(t, 3, cfg.Instrument.Channels)
	})
}

func TestCommandSet(t *testing.T) {
	cc := config.CommandConfig{
		Voltage:  "MEAS:VOLT? CH%d",
		Current:  "MEAS:CURR? CH%d",
		Mode:     "MODE? CH%d",
		Identify: "*IDN?",
	}

	cs := commandSet(cc)

	assert.Equal(t, "MEAS:VOLT? CH1", cs.VoltageQuery(1))
	assert.Equal(t, "MEAS:CURR? CH2", cs.CurrentQuery(2))
	assert.Equal(t, "MODE? CH3", cs.ModeQuery(3))
	assert.Equal(t, "*IDN?", cs.Identify)
}
