// Package sqlutil builds and escapes SQL text.
//
// Everything here is a pure string function: nothing is executed and values
// are interpolated verbatim, so callers quote string values with Quote or
// QuoteOrNull before handing them to a statement descriptor.
//
//	stmt, err := sqlutil.Update{
//	    Table:  "users",
//	    Fields: map[string]string{"name": sqlutil.Quote(name)},
//	    Where:  "id = " + sqlutil.IntOrNull(id),
//	}.Build()
package sqlutil
