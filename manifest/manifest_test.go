package manifest_test

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/andriiyaremenko/tinyioc"
	"github.com/andriiyaremenko/tinyioc/manifest"
)

var _ = Describe("Manifest", func() {
	It("should declare beans with transitive types", func() {
		m, err := manifest.Load("testdata/services.yaml")

		Expect(err).ShouldNot(HaveOccurred())

		postgres, ok := m.Type("Postgres")
		Expect(ok).To(BeTrue())

		database, ok := m.Type("Database")
		Expect(ok).To(BeTrue())

		repository, ok := m.Type("Repository")
		Expect(ok).To(BeTrue())

		Expect(postgres.AssignableTo(database)).To(BeTrue())
		Expect(database.AssignableTo(postgres)).To(BeFalse())
		Expect(repository.AssignableTo(database)).To(BeFalse())
		Expect(postgres.AssignableTo(tinyioc.TypeOf[string]())).To(BeFalse())

		beans, err := m.Scan()

		Expect(err).ShouldNot(HaveOccurred())
		Expect(beans).To(HaveLen(5))
		Expect(beans[0].Primary).To(BeTrue())
		Expect(beans[4].Dependencies).To(HaveLen(3))
		Expect(beans[4].Recipe).To(BeNil())
	})

	It("should validate and canonicalize manifest beans", func() {
		m, err := manifest.Load("testdata/services.yaml")

		Expect(err).ShouldNot(HaveOccurred())

		c := tinyioc.Scan(m)

		Expect(c.Validate()).ShouldNot(HaveOccurred())

		graph, err := c.Graph()

		Expect(err).ShouldNot(HaveOccurred())

		repository := graph[4]

		Expect(repository.Name).To(Equal("repository"))
		Expect(repository.Dependencies).To(HaveLen(3))
		Expect(repository.Dependencies[0].Shape).To(Equal("set"))
		Expect(repository.Dependencies[0].Beans).To(Equal([]string{"audit", "tracing"}))
		Expect(repository.Dependencies[1].Name).To(Equal("primaryDB"))
		Expect(repository.Dependencies[2].Name).To(Equal("replicaDB"))
		Expect(repository.Dependencies[2].Qualified).To(BeTrue())
	})

	It("should not instantiate manifest beans", func() {
		m, err := manifest.Load("testdata/services.yaml")

		Expect(err).ShouldNot(HaveOccurred())

		_, err = tinyioc.Scan(m).Build()

		Expect(errors.Is(err, tinyioc.ErrNoRecipe)).To(BeTrue())
	})

	It("should report cycle with trail", func() {
		m, err := manifest.Load("testdata/cycle.yaml")

		Expect(err).ShouldNot(HaveOccurred())

		err = tinyioc.Scan(m).Validate()

		var cycle *tinyioc.CircularDependencyError
		Expect(errors.As(err, &cycle)).To(BeTrue())
		Expect(cycle.Bean).To(Equal("A"))
		Expect(cycle.Trail).To(HaveLen(3))
	})

	It("should reject document that does not match schema", func() {
		_, err := manifest.Load("testdata/invalid.yaml")

		var schemaErr *manifest.SchemaError
		Expect(errors.As(err, &schemaErr)).To(BeTrue())
		Expect(schemaErr.Path).To(Equal("testdata/invalid.yaml"))
	})

	It("should reject dependency with both type and element type", func() {
		_, err := manifest.Parse([]byte(`
beans:
  - name: a
    type: A
    dependencies:
      - type: A
        elementType: A
`))

		Expect(err).Should(BeAssignableToTypeOf(new(manifest.SchemaError)))
	})

	It("should accept file with byte order mark", func() {
		m, err := manifest.Load("testdata/bom.yaml")

		Expect(err).ShouldNot(HaveOccurred())
		Expect(m.Beans).To(HaveLen(1))
		Expect(m.Beans[0].Name).To(Equal("solo"))
	})

	It("should read manifest from reader", func() {
		m, err := manifest.Read(strings.NewReader("beans: []\n"))

		Expect(err).ShouldNot(HaveOccurred())

		beans, err := m.Scan()

		Expect(err).ShouldNot(HaveOccurred())
		Expect(beans).To(BeEmpty())
	})

	It("should reject unknown dependency type", func() {
		_, err := manifest.Parse([]byte(`
beans:
  - name: a
    type: A
    dependencies:
      - type: Missing
`))

		var unknown *manifest.UnknownTypeError
		Expect(errors.As(err, &unknown)).To(BeTrue())
		Expect(unknown.Name).To(Equal("Missing"))
	})

	It("should reject unknown supertype", func() {
		_, err := manifest.Parse([]byte(`
types:
  - name: A
    assignableTo: [Missing]
beans: []
`))

		Expect(err).Should(BeAssignableToTypeOf(new(manifest.UnknownTypeError)))
	})

	It("should reject type declared twice", func() {
		_, err := manifest.Parse([]byte(`
types:
  - name: A
  - name: A
beans: []
`))

		Expect(err).Should(BeAssignableToTypeOf(new(manifest.DuplicateTypeError)))
	})

	It("should reject empty document", func() {
		_, err := manifest.Parse([]byte(""))

		Expect(err).Should(MatchError(manifest.ErrEmptyManifest))
	})

	It("should leave name validation to the container", func() {
		m, err := manifest.Parse([]byte(`
beans:
  - name: my bean
    type: A
`))

		Expect(err).ShouldNot(HaveOccurred())

		err = tinyioc.Scan(m).Validate()

		Expect(err).Should(BeAssignableToTypeOf(new(tinyioc.InvalidNameError)))
	})
})
