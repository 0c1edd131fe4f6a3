package envstruct_test

import (
	"testing"

	"github.com/crimetryx/crimetryx/internal/envstruct"
	"github.com/stretchr/testify/require"
)

func TestPopulate(t *testing.T) {
	type config struct {
		APIURL  string `env:"CRIMETRYX_API_URL" envDefault:"http://localhost:5000"`
		DataDir string `env:"CRIMETRYX_DATA_DIR"`
		Ignored string
	}

	tests := []struct {
		name    string
		env     map[string]string
		want    config
		wantErr error
	}{
		{
			name: "all set",
			env: map[string]string{
				"CRIMETRYX_API_URL":  "http://example.com",
				"CRIMETRYX_DATA_DIR": "/tmp/crimetryx",
			},
			want: config{APIURL: "http://example.com", DataDir: "/tmp/crimetryx"},
		},
		{
			name: "default applies",
			env: map[string]string{
				"CRIMETRYX_DATA_DIR": "/tmp/crimetryx",
			},
			want: config{APIURL: "http://localhost:5000", DataDir: "/tmp/crimetryx"},
		},
		{
			name:    "missing required",
			env:     map[string]string{},
			wantErr: envstruct.ErrEnvNotSet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookupEnv := func(key string) (string, bool) {
				v, ok := tt.env[key]
				return v, ok
			}
			var got config
			err := envstruct.Populate(&got, lookupEnv)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestPopulateRejectsNonStructPointer(t *testing.T) {
	lookupEnv := func(string) (string, bool) { return "", false }

	var s string
	require.ErrorIs(t, envstruct.Populate(s, lookupEnv), envstruct.ErrInvalidValue)
	require.ErrorIs(t, envstruct.Populate(&s, lookupEnv), envstruct.ErrInvalidValue)
}
