package ctx

// A shipment is a key:value pair that crosses process boundaries.
// Shipments stack up as a linked list; the head attached last shadows
// older entries for the same key.
type shipment struct {
	next *shipment
	key  string
	val  string
}

// WithShipment returns a copy of parent in which the value associated
// with key is val. Shipments transit processes and APIs, so both keys
// and values are plain strings that collaborators such as grpcctx and
// httpctx can serialise onto outbound requests.
func WithShipment(parent Context, key, val string) Context {
	next, _ := Value[*shipment](parent)
	return WithValue(parent, &shipment{next, key, val})
}

// ShipmentFromContext returns the value associated with key, or false
// when no shipment carries it.
func ShipmentFromContext(c Context, key string) (string, bool) {
	for sh, _ := Value[*shipment](c); sh != nil; sh = sh.next {
		if sh.key == key {
			return sh.val, true
		}
	}
	return "", false
}

// ShipmentRange calls f sequentially for each shipment in the chain,
// most recent first. If f returns false, range stops the iteration.
func ShipmentRange(c Context, f func(key, val string) bool) {
	for sh, _ := Value[*shipment](c); sh != nil; sh = sh.next {
		if !f(sh.key, sh.val) {
			return
		}
	}
}
