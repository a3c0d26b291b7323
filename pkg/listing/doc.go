// Package listing parses the inventory text files offered by the archive's
// index browser into (group, identifier) pairs.
//
// A line looks like
//
//	'5','30','Notarieel archief','KLAC01462000001','KLAC01462000002'
//
// and yields KLAC01462000001 and KLAC01462000002 in group 30.
package listing
