package postgresql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_DSN(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{
			name:   "explicit sslmode",
			config: Config{Host: "db", Port: 5432, User: "jobs", Password: "pw", Database: "jobs_db", SSLMode: "require"},
			want:   "host=db port=5432 user=jobs password=pw dbname=jobs_db sslmode=require",
		},
		{
			name:   "sslmode defaults to disable",
			config: Config{Host: "localhost", Port: 5433, User: "u", Password: "", Database: "d"},
			want:   "host=localhost port=5433 user=u password= dbname=d sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.config.DSN())
		})
	}
}
