package repository

import "testing"

func TestLikeOperatorByDialect(t *testing.T) {
	cases := []struct {
		dialect string
		want    string
	}{
		{"sqlite", "LIKE"},
		{"", "LIKE"},
		{"postgres", "ILIKE"},
		{"PostgreSQL", "ILIKE"},
		{" mysql ", "LIKE"},
	}
	for _, c := range cases {
		if got := likeOperatorByDialect(c.dialect); got != c.want {
			t.Errorf("likeOperatorByDialect(%q) = %q, want %q", c.dialect, got, c.want)
		}
	}
}

func TestDBDialectNameNilDB(t *testing.T) {
	if got := dbDialectName(nil); got != "sqlite" {
		t.Errorf("dbDialectName(nil) = %q, want sqlite", got)
	}
}
