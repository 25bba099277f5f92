/*
This package provides a minimal inversion-of-control container.
Beans are declared up front, the whole dependency graph is validated before anything
is constructed, and every bean is then built exactly once.

To install tinyioc:

	go get -u github.com/andriiyaremenko/tinyioc

How to use:

	type Greeter interface {
		Greet() string
	}

	type english struct{}

	func (english) Greet() string { return "Hello" }

	type polish struct{}

	func (polish) Greet() string { return "Cześć" }

	type Host struct {
		Greeter Greeter `inject:""`
		Guests  []Greeter
	}

	func newHost(guests []Greeter) *Host {
		return &Host{Guests: guests}
	}

	bf, err := tinyioc.
		Add(func() Greeter { return english{} }, tinyioc.Named("english"), tinyioc.Primary).
		Add(func() Greeter { return polish{} }, tinyioc.Named("polish")).
		Add(newHost).
		Build()
	if err != nil {
		// handle error
	}
	defer bf.Close()

	host, err := tinyioc.Get[*Host](bf)
	if err != nil {
		// handle error
	}

	// host.Greeter is "english", host.Guests holds both greeters

Beans can also be declared without reflection, for example to validate a graph:

	err := tinyioc.Register(
		tinyioc.NewBean("a", aType).Require(tinyioc.NewQualifiedDependency("b", bType)),
		tinyioc.NewBean("b", bType),
	).Validate()

Resolution of a dependency:
  - bean with the dependency name, it must be assignable to the dependency type;
  - if the dependency is qualified and no bean has its name, resolution fails;
  - collection dependency needs at least one bean assignable to its element type;
  - otherwise the only bean assignable to the dependency type, or the only primary one.

Functions:
  - tinyioc.New
  - tinyioc.Add
  - tinyioc.Register
  - tinyioc.Scan
  - tinyioc.Get
  - tinyioc.GetNamed
  - tinyioc.GetAll
  - tinyioc.MustGet
  - tinyioc.SetDefaultLogger

Scanners:
  - tinyioc.Component - bean built by func(T1, T2, ...) [T|(T, error)|(T, func(), error)]
  - tinyioc.Struct[Type] - *Type with fields tagged `inject` filled
  - tinyioc.Value - bean holding a ready value
*/
package tinyioc
