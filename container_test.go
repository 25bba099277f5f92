package tinyioc_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/goleak"

	"github.com/andriiyaremenko/tinyioc"
)

var _ = Describe("Container", func() {
	It("should build every bean and resolve dependencies by type", func() {
		bf, err := tinyioc.
			Add(nameServiceConstructor).
			Add(heroConstructor).
			Build()

		Expect(err).ShouldNot(HaveOccurred())
		Expect(bf.Phase()).To(Equal(tinyioc.Ready))

		hero, err := tinyioc.Get[*Hero](bf)

		Expect(err).ShouldNot(HaveOccurred())
		Expect(hero.Announce()).To(Equal("Bob is our hero!"))

		byName, err := bf.GetBean("hero")

		Expect(err).ShouldNot(HaveOccurred())
		Expect(byName).To(BeIdenticalTo(hero))

		Expect(bf.ContainsBean("nameService")).To(BeTrue())
		Expect(bf.ContainsBean("villain")).To(BeFalse())
	})

	It("should not allow lookups before build", func() {
		c := tinyioc.
			Add(nameServiceConstructor).
			Add(heroConstructor)

		_, err := c.GetBean("hero")

		Expect(err).Should(MatchError(tinyioc.ErrNotReady))

		_, err = c.GetAllBeans(heroType)

		Expect(err).Should(MatchError(tinyioc.ErrNotReady))
		Expect(c.ContainsBean("hero")).To(BeFalse())

		Expect(c.Validate()).ShouldNot(HaveOccurred())
		Expect(c.Phase()).To(Equal(tinyioc.Canonicalized))

		_, err = c.GetBeanOfType(heroType)

		Expect(err).Should(MatchError(tinyioc.ErrNotReady))
	})

	It("should build empty container", func() {
		bf, err := tinyioc.New().Build()

		Expect(err).ShouldNot(HaveOccurred())

		all, err := bf.GetAllBeans(heroType)

		Expect(err).ShouldNot(HaveOccurred())
		Expect(all).To(BeEmpty())
	})

	It("should return empty map but fail single lookup for type without beans", func() {
		bf, err := tinyioc.Add(nameServiceConstructor).Build()

		Expect(err).ShouldNot(HaveOccurred())

		all, err := tinyioc.GetAll[Plugin](bf)

		Expect(err).ShouldNot(HaveOccurred())
		Expect(all).NotTo(BeNil())
		Expect(all).To(BeEmpty())

		_, err = tinyioc.Get[Plugin](bf)

		var notFound *tinyioc.BeanNotFoundError
		Expect(errors.As(err, &notFound)).To(BeTrue())
	})

	It("should require both name and type to match", func() {
		bf, err := tinyioc.
			Add(nameServiceConstructor).
			Add(heroConstructor).
			Build()

		Expect(err).ShouldNot(HaveOccurred())

		_, err = tinyioc.GetNamed[*Hero](bf, "nameService")

		Expect(err).Should(BeAssignableToTypeOf(new(tinyioc.BeanNotFoundError)))

		_, err = tinyioc.GetNamed[*Hero](bf, "villain")

		Expect(err).Should(BeAssignableToTypeOf(new(tinyioc.BeanNotFoundError)))

		service, err := tinyioc.GetNamed[NameService](bf, "nameService")

		Expect(err).ShouldNot(HaveOccurred())
		Expect(service.Name()).To(Equal("Bob"))
	})

	It("should report ambiguous lookup by type", func() {
		bf, err := tinyioc.
			Add(namedProvider("Batman"), tinyioc.Named("batman"), tinyioc.Primary).
			Add(namedProvider("Robin"), tinyioc.Named("robin")).
			Build()

		Expect(err).ShouldNot(HaveOccurred())

		_, err = tinyioc.Get[NameService](bf)

		Expect(err).Should(BeAssignableToTypeOf(new(tinyioc.AmbiguousBeanError)))

		all, err := tinyioc.GetAll[NameService](bf)

		Expect(err).ShouldNot(HaveOccurred())
		Expect(all).To(HaveLen(2))
		Expect(all["batman"].Name()).To(Equal("Batman"))
		Expect(all["robin"].Name()).To(Equal("Robin"))
	})

	It("should use primary bean when several match", func() {
		bf, err := tinyioc.
			Add(namedProvider("Batman"), tinyioc.Named("batman"), tinyioc.Primary).
			Add(namedProvider("Robin"), tinyioc.Named("robin")).
			Add(heroConstructor).
			Build()

		Expect(err).ShouldNot(HaveOccurred())
		Expect(tinyioc.MustGet[*Hero](bf).Announce()).To(Equal("Batman is our hero!"))
	})

	It("should fail when several beans match and none is primary", func() {
		_, err := tinyioc.
			Add(namedProvider("Batman"), tinyioc.Named("batman")).
			Add(namedProvider("Robin"), tinyioc.Named("robin")).
			Add(heroConstructor).
			Build()

		var noPrimary *tinyioc.NoPrimaryBeanError
		Expect(errors.As(err, &noPrimary)).To(BeTrue())
		Expect(noPrimary.Candidates).To(Equal([]string{"batman", "robin"}))

		var definition *tinyioc.BeanDefinitionError
		Expect(errors.As(err, &definition)).To(BeTrue())
		Expect(definition.BeanName).To(Equal("hero"))
	})

	It("should resolve qualified dependency by name", func() {
		bf, err := tinyioc.
			Add(namedProvider("Batman"), tinyioc.Named("batman"), tinyioc.Primary).
			Add(namedProvider("Robin"), tinyioc.Named("robin")).
			Add(heroConstructor, tinyioc.Qualified(0, "robin")).
			Build()

		Expect(err).ShouldNot(HaveOccurred())
		Expect(tinyioc.MustGet[*Hero](bf).Announce()).To(Equal("Robin is our hero!"))
	})

	It("should not fall back to type for missing qualifier", func() {
		_, err := tinyioc.
			Add(namedProvider("Batman"), tinyioc.Named("batman")).
			Add(heroConstructor, tinyioc.Qualified(0, "joker")).
			Build()

		var notFound *tinyioc.DependencyNotFoundError
		Expect(errors.As(err, &notFound)).To(BeTrue())
		Expect(notFound.Qualified).To(BeTrue())
		Expect(notFound.Name).To(Equal("joker"))
	})

	It("should inject collections and tagged fields", func() {
		bf, err := tinyioc.
			Add(namedProvider("Batman"), tinyioc.Named("batman"), tinyioc.Primary).
			Add(namedProvider("Robin"), tinyioc.Named("robin")).
			Add(partyConstructor).
			Add(tavernConstructor).
			Build()

		Expect(err).ShouldNot(HaveOccurred())

		party := tinyioc.MustGet[*Party](bf)

		Expect(party.Leader.Name()).To(Equal("Batman"))
		Expect(party.Sidekick.Name()).To(Equal("Robin"))
		Expect(party.Members).To(HaveLen(2))
		Expect(party.Members[0].Name()).To(Equal("Batman"))
		Expect(party.Members[1].Name()).To(Equal("Robin"))

		tavern := tinyioc.MustGet[*Tavern](bf)

		Expect(tavern.Guests).To(HaveKey("batman"))
		Expect(tavern.Guests).To(HaveKey("robin"))

		queued := make([]string, 0)
		for guest := range tavern.Queue {
			queued = append(queued, guest.Name())
		}

		Expect(queued).To(Equal([]string{"Batman", "Robin"}))
	})

	It("should fail collection without elements", func() {
		_, err := tinyioc.Add(partyConstructor).Build()

		var notFound *tinyioc.DependencyNotFoundError
		Expect(errors.As(err, &notFound)).To(BeTrue())
		Expect(notFound.Element).To(Equal("tinyioc_test.NameService"))
	})

	It("should detect circular dependency before constructing anything", func() {
		calls := 0
		_, err := tinyioc.
			Add(func() NameService {
				calls++
				return NameProvider("Bob")
			}).
			Add(impostorConstructor).
			Add(disguisedImpostorConstructor).
			Build()

		var cycle *tinyioc.CircularDependencyError
		Expect(errors.As(err, &cycle)).To(BeTrue())
		Expect(cycle.Bean).To(Equal("impostor"))
		Expect(cycle.Trail).To(HaveLen(2))
		Expect(cycle.Trail[1].String()).To(Equal("hero depends on: [impostor]"))
		Expect(calls).To(BeZero())
	})

	It("should report self dependency with full trail", func() {
		err := tinyioc.Register(bean("a", "a")).Validate()

		Expect(err).Should(BeAssignableToTypeOf(new(tinyioc.CircularDependencyError)))
		Expect(err.Error()).To(Equal(
			"circular dependency detected for bean \"a\":\n\ta depends on: [a]\n\ta depends on: [a]",
		))
	})

	It("should report every duplicate name", func() {
		err := tinyioc.Register(
			tinyioc.NewBean("a", intType),
			tinyioc.NewBean("a", stringType),
			tinyioc.NewBean("b", intType),
			tinyioc.NewBean("b", heroType),
		).Validate()

		var duplicates *tinyioc.DuplicateBeanError
		Expect(errors.As(err, &duplicates)).To(BeTrue())
		Expect(duplicates.Names).To(Equal([]string{"a", "b"}))
	})

	It("should reject invalid names", func() {
		err := tinyioc.Register(tinyioc.NewBean("my bean", intType)).Validate()

		Expect(err).Should(BeAssignableToTypeOf(new(tinyioc.InvalidNameError)))

		err = tinyioc.Register(bean("a", "the\tother")).Validate()

		Expect(err).Should(BeAssignableToTypeOf(new(tinyioc.InvalidNameError)))
	})

	It("should canonicalize dependency names to the primary bean", func() {
		c := tinyioc.Register(
			tinyioc.NewBean("X", intType),
			tinyioc.NewBean("Y", intType).AsPrimary(),
			tinyioc.NewBean("Z", stringType).Require(tinyioc.NewDependency(intType)),
		)

		Expect(c.Validate()).ShouldNot(HaveOccurred())

		graph, err := c.Graph()

		Expect(err).ShouldNot(HaveOccurred())
		Expect(graph).To(HaveLen(3))
		Expect(graph[2].Name).To(Equal("Z"))
		Expect(graph[2].Dependencies).To(HaveLen(1))
		Expect(graph[2].Dependencies[0].Name).To(Equal("Y"))
		Expect(graph[2].Dependencies[0].Beans).To(Equal([]string{"Y"}))
	})

	It("should fail canonicalization without primary", func() {
		err := tinyioc.Register(
			tinyioc.NewBean("X", intType),
			tinyioc.NewBean("Y", intType),
			tinyioc.NewBean("Z", stringType).Require(tinyioc.NewDependency(intType)),
		).Validate()

		Expect(err).Should(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("more than one bean with type int"))
	})

	It("should accept types that cannot be compared", func() {
		db := tagType{name: "DB"}

		c := tinyioc.Register(
			tinyioc.NewBean("pg", tagType{name: "PG", supers: []string{"DB"}}),
			tinyioc.NewBean("repo", tagType{name: "Repo"}).Require(tinyioc.NewDependency(db)),
			tinyioc.NewBean("audit", tagType{name: "Audit"}).Require(tinyioc.NewDependency(db)),
		)

		Expect(c.Validate()).ShouldNot(HaveOccurred())

		graph, err := c.Graph()

		Expect(err).ShouldNot(HaveOccurred())
		Expect(graph[1].Dependencies).To(HaveLen(1))
		Expect(graph[1].Dependencies[0].Name).To(Equal("pg"))
		Expect(graph[2].Dependencies[0].Beans).To(Equal([]string{"pg"}))
	})

	It("should reject dependencies of different types resolving to one bean during validation", func() {
		o := new(observer)

		c := tinyioc.New(tinyioc.WithObservers(o)).Register(
			tinyioc.NewBean("impostor", tinyioc.TypeOf[*Impostor]()),
			tinyioc.NewBean("tavern", stringType).Require(
				tinyioc.NewDependency(tinyioc.TypeOf[*Impostor]()),
				tinyioc.NewDependency(nameType),
			),
		)

		err := c.Validate()

		var conflict *tinyioc.DependencyConflictError
		Expect(errors.As(err, &conflict)).To(BeTrue())
		Expect(conflict.BeanName).To(Equal("tavern"))
		Expect(conflict.Key).To(Equal("impostor"))
		Expect(conflict.Existing).To(Equal("*tinyioc_test.Impostor"))
		Expect(conflict.Incoming).To(Equal("tinyioc_test.NameService"))
		Expect(o.phases).To(HaveLen(1))
		Expect(o.phases[0].Phase).To(Equal(tinyioc.Validated))
		Expect(c.Phase()).To(Equal(tinyioc.Collected))
	})

	It("should stop collection cycle missed by validation while constructing", func() {
		_, err := tinyioc.
			Add(forgeConstructor).
			Add(anvilConstructor).
			Build()

		var instantiation *tinyioc.InstantiationError
		Expect(errors.As(err, &instantiation)).To(BeTrue())
		Expect(instantiation.BeanName).To(Equal("forge"))

		var cycle *tinyioc.CircularDependencyError
		Expect(errors.As(err, &cycle)).To(BeTrue())
		Expect(cycle.Bean).To(Equal("forge"))
		Expect(cycle.Trail).To(HaveLen(2))
		Expect(cycle.Trail[0].String()).To(Equal("forge depends on: [anvil]"))
		Expect(cycle.Trail[1].String()).To(Equal("anvil depends on: [forge]"))
	})

	It("should not accept beans after validation", func() {
		c := tinyioc.Add(nameServiceConstructor)

		Expect(c.Validate()).ShouldNot(HaveOccurred())

		_, err := c.Add(heroConstructor).Build()

		Expect(err).Should(MatchError(tinyioc.ErrRegistryFrozen))
	})

	It("should not instantiate descriptor without recipe", func() {
		c := tinyioc.Register(tinyioc.NewBean("a", intType))

		Expect(c.Validate()).ShouldNot(HaveOccurred())

		_, err := c.Build()

		Expect(errors.Is(err, tinyioc.ErrNoRecipe)).To(BeTrue())
		Expect(err).Should(BeAssignableToTypeOf(new(tinyioc.InstantiationError)))
	})

	It("should wrap constructor error", func() {
		errBoom := errors.New("boom")

		_, err := tinyioc.
			Add(func() (NameService, error) { return nil, errBoom }).
			Build()

		Expect(errors.Is(err, errBoom)).To(BeTrue())

		var instantiation *tinyioc.InstantiationError
		Expect(errors.As(err, &instantiation)).To(BeTrue())
		Expect(instantiation.BeanName).To(Equal("nameService"))

		var constructor *tinyioc.ConstructorError
		Expect(errors.As(err, &constructor)).To(BeTrue())
	})

	It("should recover from constructor panic and release built beans", func() {
		rec := new(recorder)

		_, err := tinyioc.
			Add(nameServiceConstructorWithCleanup(rec.record("nameService"))).
			Add(scaredHeroConstructor).
			Build()

		Expect(err).Should(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("recovered from panic: scared"))
		Expect(rec.Calls()).To(Equal([]string{"nameService"}))
	})

	It("should clean up dependants first and only once", func() {
		rec := new(recorder)

		bf, err := tinyioc.
			Add(nameServiceConstructorWithCleanup(rec.record("nameService"))).
			Add(heroConstructorWithCleanup(rec.record("hero"))).
			Build()

		Expect(err).ShouldNot(HaveOccurred())
		Expect(rec.Calls()).To(BeEmpty())

		bf.Close()
		bf.Close()

		Expect(rec.Calls()).To(Equal([]string{"hero", "nameService"}))
	})

	It("should notify observers", func() {
		o := new(observer)

		_, err := tinyioc.New(tinyioc.WithObservers(o)).
			Add(nameServiceConstructor).
			Add(heroConstructor).
			Build()

		Expect(err).ShouldNot(HaveOccurred())

		phases := make([]tinyioc.Phase, len(o.phases))
		for i, e := range o.phases {
			phases[i] = e.Phase
			Expect(e.Err).ShouldNot(HaveOccurred())
			Expect(e.Beans).To(Equal(2))
		}

		Expect(phases).To(Equal([]tinyioc.Phase{
			tinyioc.Validated,
			tinyioc.Canonicalized,
			tinyioc.Built,
			tinyioc.Ready,
		}))
		Expect(o.beans).To(HaveLen(2))
		Expect(o.beans[0].Name).To(Equal("nameService"))
		Expect(o.beans[1].Name).To(Equal("hero"))
	})

	It("should report failed phase to observers", func() {
		o := new(observer)

		err := tinyioc.New(tinyioc.WithObservers(o)).Register(bean("a", "a")).Validate()

		Expect(err).Should(HaveOccurred())
		Expect(o.phases).To(HaveLen(1))
		Expect(o.phases[0].Phase).To(Equal(tinyioc.Validated))
		Expect(o.phases[0].Err).To(MatchError(err))
	})

	It("should close container once cleanup context is done and not leak goroutines", func() {
		ctx, cancel := context.WithCancel(context.Background())
		rec := new(recorder)

		bf, err := tinyioc.New(tinyioc.WithCleanupContext(ctx)).
			Add(nameServiceConstructorWithCleanup(rec.record("nameService"))).
			Add(heroConstructorWithCleanup(rec.record("hero"))).
			Build()

		Expect(err).ShouldNot(HaveOccurred())

		cancel()

		Eventually(rec.Calls).Should(Equal([]string{"hero", "nameService"}))

		bf.Close()

		err = goleak.Find(
			goleak.
				IgnoreTopFunction(
					"github.com/onsi/ginkgo/v2/internal.(*Suite).runNode",
				),
			goleak.
				IgnoreTopFunction(
					"github.com/onsi/ginkgo/v2/internal/interrupt_handler.(*InterruptHandler).registerForInterrupts.func2",
				),
			goleak.
				IgnoreAnyFunction(
					"github.com/onsi/ginkgo/v2/internal.RegisterForProgressSignal.func1",
				),
			goleak.
				IgnoreAnyFunction(
					"os/signal.NotifyContext.func1",
				),
		)

		Expect(err).ShouldNot(HaveOccurred())
	})
})
