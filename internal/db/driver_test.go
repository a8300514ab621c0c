package db

import "testing"

func TestConvertPlaceholders(t *testing.T) {
	tests := []struct {
		in            string
		wantNumbered  string
		wantPositions string
	}{
		{"SELECT * FROM t WHERE a = $1", "SELECT * FROM t WHERE a = ?1", "SELECT * FROM t WHERE a = ?"},
		{"a = $1 AND b = $2 AND c = $12", "a = ?1 AND b = ?2 AND c = ?12", "a = ? AND b = ? AND c = ?"},
		{"no placeholders", "no placeholders", "no placeholders"},
	}
	for _, tt := range tests {
		if got := convertPlaceholdersNumbered(tt.in); got != tt.wantNumbered {
			t.Errorf("convertPlaceholdersNumbered(%q) = %q, want %q", tt.in, got, tt.wantNumbered)
		}
		if got := convertPlaceholdersPositional(tt.in); got != tt.wantPositions {
			t.Errorf("convertPlaceholdersPositional(%q) = %q, want %q", tt.in, got, tt.wantPositions)
		}
	}
}

func TestMySQLDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"mysql://root:pw@localhost:3306/app", "root:pw@tcp(localhost:3306)/app"},
		{"mysql://root@db.internal/app?parseTime=true", "root@tcp(db.internal:3306)/app?parseTime=true"},
		{"root:pw@tcp(localhost:3306)/app", "root:pw@tcp(localhost:3306)/app"},
	}
	for _, tt := range tests {
		got, err := mysqlDSN(tt.in)
		if err != nil {
			t.Fatalf("mysqlDSN(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("mysqlDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
