package models

// CartLine is one product entry in a cart. It only lives for the checkout session.
type CartLine struct {
	Product  Product
	Quantity int
	Addons   *AddonSelection
	Note     string
}
