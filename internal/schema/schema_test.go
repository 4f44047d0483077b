package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func buildTestSchema() *Schema {
	s := New("Query")
	s.AddType(NewType("Query", TypeKindObject).
		AddField(NewField("people", ListType(NonNullType(NamedType("Person"))))))
	s.AddType(NewType("Person", TypeKindObject).
		AddField(NewField("id", NonNullType(NamedType(ScalarInt)))).
		AddField(NewField("name", NonNullType(NamedType(ScalarString)))))
	return s
}

func TestNewRegistersBuiltinScalars(t *testing.T) {
	s := New("Query")
	for _, name := range []string{ScalarString, ScalarInt, ScalarUInt, ScalarFloat, ScalarBoolean, ScalarID} {
		typ, ok := s.Types[name]
		require.True(t, ok, name)
		require.Equal(t, TypeKindScalar, typ.Kind)
	}
}

func TestResolveFieldCaseSensitive(t *testing.T) {
	s := buildTestSchema()
	_, ok := s.ResolveField("Person", "name")
	require.True(t, ok)
	_, ok = s.ResolveField("Person", "Name")
	require.False(t, ok)
	require.False(t, s.HasField("Person", "NAME"))
}

func TestAddFieldAppends(t *testing.T) {
	s := buildTestSchema()
	require.True(t, s.AddField("Person", NewField("age", NamedType(ScalarInt))))
	got := fieldNames(s.TypeFields("Person"))
	want := []string{"id", "name", "age"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestAddFieldReplacesInPlace(t *testing.T) {
	s := buildTestSchema()
	s.AddField("Person", NewField("id", NamedType(ScalarID)))
	got := fieldNames(s.TypeFields("Person"))
	// Redefinition keeps the original declaration position.
	require.Equal(t, []string{"id", "name"}, got)
	f, _ := s.ResolveField("Person", "id")
	require.Equal(t, ScalarID, f.Type.GetNamedType())
}

func TestRemoveField(t *testing.T) {
	s := buildTestSchema()
	require.True(t, s.RemoveField("Person", "id"))
	require.False(t, s.HasField("Person", "id"))
	require.False(t, s.RemoveField("Person", "id"))
	require.False(t, s.RemoveField("Nope", "id"))
}

func TestCloneIsolation(t *testing.T) {
	s := buildTestSchema()
	snap := s.Clone()

	s.RemoveField("Person", "name")
	s.AddField("Person", NewField("email", NamedType(ScalarString)))

	// The snapshot still sees the pre-mutation shape.
	require.True(t, snap.HasField("Person", "name"))
	require.False(t, snap.HasField("Person", "email"))
	require.False(t, s.HasField("Person", "name"))
}

func TestArgumentRequired(t *testing.T) {
	required := &Argument{Name: "id", Type: NonNullType(NamedType(ScalarInt))}
	require.True(t, required.Required())

	defaulted := &Argument{Name: "id", Type: NonNullType(NamedType(ScalarInt)), Default: int64(1)}
	require.False(t, defaulted.Required())

	optional := &Argument{Name: "id", Type: NamedType(ScalarInt)}
	require.False(t, optional.Required())
}

func TestTypeRefNotation(t *testing.T) {
	cases := []struct {
		ref  *TypeRef
		want string
	}{
		{NamedType("Person"), "Person"},
		{NonNullType(NamedType("Person")), "Person!"},
		{ListType(NamedType("Person")), "[Person]"},
		{NonNullType(ListType(NonNullType(NamedType("Person")))), "[Person!]!"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, tc.ref.String())
	}
}

func TestTypeRefPredicates(t *testing.T) {
	listNN := NonNullType(ListType(NonNullType(NamedType("Task"))))
	require.True(t, listNN.IsNonNull())
	require.True(t, listNN.IsList())
	require.Equal(t, "Task", listNN.GetNamedType())
	require.Equal(t, "Task!", listNN.Elem().String())

	plain := NamedType("Task")
	require.False(t, plain.IsNonNull())
	require.False(t, plain.IsList())
	require.Nil(t, plain.Elem())

	require.Equal(t, "Task", Nullable(NonNullType(NamedType("Task"))).String())
}

func fieldNames(fields []*Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}
