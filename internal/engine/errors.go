package engine

import "errors"

// errSessionStoreRequired is returned by New when no session store is given.
var errSessionStoreRequired = errors.New("engine: session store is required")
