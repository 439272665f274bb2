package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/aanand-mishra/schools-api/internal/config"
	"github.com/aanand-mishra/schools-api/internal/storage"
	"github.com/aanand-mishra/schools-api/internal/types"
)

func TestConnString(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Database
		want string
	}{
		{
			name: "defaults",
			cfg: config.Database{
				Driver:   config.DriverPostgres,
				Host:     "localhost",
				User:     "schooluser",
				Password: "schoolpass",
				Name:     "schools_db",
			},
			want: "host='localhost' port=5432 user='schooluser' password='schoolpass' dbname='schools_db' sslmode=disable",
		},
		{
			name: "ssl and escaping",
			cfg: config.Database{
				Driver:   config.DriverPostgres,
				Host:     "pg.internal",
				Port:     6432,
				User:     "app",
				Password: `it's\secret`,
				Name:     "schools",
				SSL:      true,
			},
			want: `host='pg.internal' port=6432 user='app' password='it\'s\\secret' dbname='schools' sslmode=require`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConnString(tt.cfg); got != tt.want {
				t.Fatalf("ConnString = %q, want %q", got, tt.want)
			}
		})
	}
}

// openTestStore connects to SCHOOLS_TEST_POSTGRES_DSN and starts from an
// empty schools table.
func openTestStore(t *testing.T) *Postgres {
	t.Helper()

	dsn := os.Getenv("SCHOOLS_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SCHOOLS_TEST_POSTGRES_DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec("DROP TABLE IF EXISTS schools CASCADE"); err != nil {
		t.Fatalf("drop: %v", err)
	}
	s := &Postgres{Db: db}
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func TestPostgresRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	image := "https://cdn.example.com/schoolImages/a.png"
	first, err := s.CreateSchool(ctx, types.School{
		Name: "Lake View", Address: "4 Lake Road", City: "Bhopal", State: "MP",
		Contact: "+917000000000", Email: "hello@lakeview.in", Image: &image,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := s.CreateSchool(ctx, types.School{
		Name: "Hill Top", Address: "9 Hill Road", City: "Shimla", State: "HP",
		Contact: "9000000000", Email: "hello@hilltop.in",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	schools, err := s.GetSchools(ctx)
	if err != nil {
		t.Fatalf("get schools: %v", err)
	}
	if len(schools) != 2 || schools[0].ID != second || schools[1].ID != first {
		t.Fatalf("schools = %+v, want [%d %d]", schools, second, first)
	}
	if schools[1].Image == nil || *schools[1].Image != image {
		t.Fatalf("image = %v, want %q", schools[1].Image, image)
	}

	if _, err := s.GetSchoolByID(ctx, second+100); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want %v", err, storage.ErrNotFound)
	}
}
