package value

import (
	"fmt"

	"github.com/dolthub/swiss"
	"github.com/mna/glox/lang/intern"
)

// A Class is a shared, mutable runtime class object: a name and a method
// table mapping method-name symbols to shared Closures. The method table
// is backed by a swiss.Map for flatter, cache-friendlier lookups than a
// built-in Go map on the VM's hot property-dispatch path.
type Class struct {
	Name    *intern.Symbol
	Methods *swiss.Map[*intern.Symbol, *Closure]
}

var _ Value = (*Class)(nil)

// NewClass returns an empty class named name.
func NewClass(name *intern.Symbol) *Class {
	return &Class{Name: name, Methods: swiss.NewMap[*intern.Symbol, *Closure](8)}
}

func (c *Class) String() string { return c.Name.String() }
func (*Class) Kind() Kind       { return KindClass }

// Method looks up name in the class's method table.
func (c *Class) Method(name *intern.Symbol) (*Closure, bool) {
	return c.Methods.Get(name)
}

// An Instance is a shared, mutable runtime object: a reference to its
// Class plus a field table mapping field-name symbols to values.
type Instance struct {
	Class  *Class
	Fields *swiss.Map[*intern.Symbol, Value]
}

var _ Value = (*Instance)(nil)

// NewInstance returns a fresh, field-less instance of class.
func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, Fields: swiss.NewMap[*intern.Symbol, Value](4)}
}

func (i *Instance) String() string { return fmt.Sprintf("%s instance", i.Class.Name.String()) }
func (*Instance) Kind() Kind       { return KindInstance }

// A BoundMethod is an immutable snapshot pairing a receiver Value (the
// `this` Instance at binding time) with the Closure to invoke; calling it
// invokes the closure with the receiver rebound into local slot 0.
type BoundMethod struct {
	Receiver Value
	Method   *Closure
}

var _ Value = (*BoundMethod)(nil)

func (bm *BoundMethod) String() string { return bm.Method.String() }
func (*BoundMethod) Kind() Kind        { return KindBoundMethod }
