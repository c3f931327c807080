package kvstore

import "errors"

// ErrKeyNotFound is returned by Load and Delete when the durable tier has
// no record for the key. Check with errors.Is():
//
//	value, err := kv.Load(ctx, "settings")
//	if errors.Is(err, kvstore.ErrKeyNotFound) {
//	    // seed defaults
//	}
var ErrKeyNotFound = errors.New("key not found")
