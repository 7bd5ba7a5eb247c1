package ddl

import (
	"strings"
	"testing"
)

func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: "name", want: `"name"`},
		{name: "empty", in: "", want: `""`},
		{name: "with space", in: "user name", want: `"user name"`},
		{name: "with double quote", in: `weird"name`, want: `"weird""name"`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := quoteIdent(tt.in); got != tt.want {
				t.Fatalf("quoteIdent(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSchemaSQL(t *testing.T) {
	t.Parallel()

	stmts, err := SchemaSQL()
	if err != nil {
		t.Fatalf("SchemaSQL: %v", err)
	}
	if len(stmts) != 4 {
		t.Fatalf("len(stmts) = %d, want 4", len(stmts))
	}

	clients := stmts[0]
	for _, want := range []string{
		`CREATE TABLE IF NOT EXISTS "clients"`,
		`"id" INTEGER PRIMARY KEY AUTOINCREMENT`,
		`"registered_date" TEXT`,
	} {
		if !strings.Contains(clients, want) {
			t.Errorf("clients DDL missing %q:\n%s", want, clients)
		}
	}
	if strings.Contains(clients, "PRIMARY KEY (") {
		t.Errorf("clients DDL repeats the inline primary key:\n%s", clients)
	}

	items := stmts[3]
	for _, want := range []string{
		`PRIMARY KEY ("order_id", "product_id")`,
		`FOREIGN KEY ("order_id") REFERENCES "orders"("id")`,
		`FOREIGN KEY ("product_id") REFERENCES "products"("id")`,
		`"unit_price" NUMERIC(10,2)`,
	} {
		if !strings.Contains(items, want) {
			t.Errorf("order_items DDL missing %q:\n%s", want, items)
		}
	}
}
