package ddl

import "ecombench/internal/model"

// Type is a logical column type resolved to SQL by a TypeMap.
type Type int

const (
	Int Type = iota
	Text
	Date
	Timestamp
	Money
)

// TypeMap maps logical types to a dialect's SQL types.
type TypeMap map[Type]string

// DefaultTypes is the MySQL-flavored mapping of the reference schema.
var DefaultTypes = TypeMap{
	Int:       "INT",
	Text:      "VARCHAR(100)",
	Date:      "DATE",
	Timestamp: "DATETIME",
	Money:     "DECIMAL(10,2)",
}

// Schema returns the relational model in creation order: clients, products,
// orders, order_items. Surrogate ids auto-increment; order_items is keyed on
// (order_id, product_id).
func Schema(types TypeMap) []TableDef {
	ty := func(t Type) string {
		if s, ok := types[t]; ok {
			return s
		}
		return DefaultTypes[t]
	}
	return []TableDef{
		{
			FQN: model.TableClients,
			Columns: []ColumnDef{
				{Name: "id", SQLType: ty(Int), PrimaryKey: true, AutoIncrement: true},
				{Name: "name", SQLType: ty(Text), Nullable: true},
				{Name: "email", SQLType: ty(Text), Nullable: true},
				{Name: "registered_date", SQLType: ty(Date), Nullable: true},
			},
		},
		{
			FQN: model.TableProducts,
			Columns: []ColumnDef{
				{Name: "id", SQLType: ty(Int), PrimaryKey: true, AutoIncrement: true},
				{Name: "name", SQLType: ty(Text), Nullable: true},
				{Name: "price", SQLType: ty(Money), Nullable: true},
			},
		},
		{
			FQN: model.TableOrders,
			Columns: []ColumnDef{
				{Name: "id", SQLType: ty(Int), PrimaryKey: true, AutoIncrement: true},
				{Name: "client_id", SQLType: ty(Int), Nullable: true},
				{Name: "order_timestamp", SQLType: ty(Timestamp), Nullable: true},
			},
			ForeignKeys: []ForeignKey{{Column: "client_id", RefTable: model.TableClients, RefColumn: "id"}},
		},
		{
			FQN: model.TableOrderItems,
			Columns: []ColumnDef{
				{Name: "order_id", SQLType: ty(Int), PrimaryKey: true},
				{Name: "product_id", SQLType: ty(Int), PrimaryKey: true},
				{Name: "quantity", SQLType: ty(Int), Nullable: true},
				{Name: "unit_price", SQLType: ty(Money), Nullable: true},
			},
			ForeignKeys: []ForeignKey{
				{Column: "order_id", RefTable: model.TableOrders, RefColumn: "id"},
				{Column: "product_id", RefTable: model.TableProducts, RefColumn: "id"},
			},
		},
	}
}

// TableNames lists the schema's tables in creation order.
func TableNames() []string {
	defs := Schema(DefaultTypes)
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.FQN
	}
	return out
}

// BuildSchemaSQL renders every table of Schema(types) for d.
func BuildSchemaSQL(d Dialect, types TypeMap) ([]string, error) {
	var stmts []string
	for _, t := range Schema(types) {
		s, err := BuildCreateTableSQLFor(d, t)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}
