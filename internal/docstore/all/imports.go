// Package all registers every built-in docstore backend. Import it for side
// effects:
//
//	import _ "ecombench/internal/docstore/all"
package all

import (
	_ "ecombench/internal/docstore/memory"
	_ "ecombench/internal/docstore/pebblestore"
	_ "ecombench/internal/docstore/surreal"
)
