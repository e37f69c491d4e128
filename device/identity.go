package device

// BusUSB is the Linux BUS_USB bus type.
const BusUSB uint16 = 0x03

// Identity is the metadata a virtual output device presents to the host.
type Identity struct {
	Name    string
	Bus     uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

// DefaultIdentity is the Thrustmaster T.16000M identity most simulators ship
// bindings for.
func DefaultIdentity() Identity {
	return Identity{
		Name:    "Thrustmaster T.16000M (Virtual)",
		Bus:     BusUSB,
		Vendor:  0x044f,
		Product: 0xb10a,
		Version: 0x0001,
	}
}

// CreateOptions overrides parts of an output device's identity.
// Nil fields keep the backend default.
type CreateOptions struct {
	Name      *string
	IdVendor  *uint16
	IdProduct *uint16
}

// Apply returns id with the non-nil overrides from o applied.
func (o *CreateOptions) Apply(id Identity) Identity {
	if o == nil {
		return id
	}
	if o.Name != nil {
		id.Name = *o.Name
	}
	if o.IdVendor != nil {
		id.Vendor = *o.IdVendor
	}
	if o.IdProduct != nil {
		id.Product = *o.IdProduct
	}
	return id
}
