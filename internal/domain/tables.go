package domain

var Tables = []interface{}{
	// System
	&SysOpr{},
	&SysOprLog{},
	// Inventory
	&Category{},
	&Product{},
}
