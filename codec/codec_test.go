package codec

import (
	"testing"

	"google.golang.org/protobuf/types/known/wrapperspb"
)

type profile struct {
	Name string `json:"name" msgpack:"name" cbor:"name"`
	Age  int    `json:"age" msgpack:"age" cbor:"age"`
}

func TestByName(t *testing.T) {
	for _, name := range []string{NameJSON, NameMsgpack, NameCBOR} {
		c, err := ByName[profile](name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		b, err := c.Encode(profile{Name: "ada", Age: 36})
		if err != nil {
			t.Fatalf("%s encode: %v", name, err)
		}
		got, err := c.Decode(b)
		if err != nil || got != (profile{Name: "ada", Age: 36}) {
			t.Fatalf("%s decode: %+v %v", name, got, err)
		}
	}
	if _, err := ByName[profile]("gob"); err == nil {
		t.Fatalf("expected unknown codec error")
	}
}

func TestCBORDeterministic(t *testing.T) {
	c, err := NewCBOR[map[string]int](true)
	if err != nil {
		t.Fatal(err)
	}
	a, _ := c.Encode(map[string]int{"b": 2, "a": 1, "c": 3})
	b, _ := c.Encode(map[string]int{"c": 3, "a": 1, "b": 2})
	if string(a) != string(b) {
		t.Fatalf("deterministic encoding differs: %x vs %x", a, b)
	}
}

func TestLimitRejectsOversizedPayload(t *testing.T) {
	c := Limit[string]{Inner: String{}, MaxDecode: 4}
	if _, err := c.Decode([]byte("12345")); err == nil {
		t.Fatalf("expected size error")
	}
	if v, err := c.Decode([]byte("1234")); err != nil || v != "1234" {
		t.Fatalf("got %q %v", v, err)
	}
}

func TestProtobuf(t *testing.T) {
	c := NewProtobuf(func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} })
	b, err := c.Encode(wrapperspb.String("v1"))
	if err != nil {
		t.Fatal(err)
	}
	m, err := c.Decode(b)
	if err != nil || m.GetValue() != "v1" {
		t.Fatalf("got %v %v", m, err)
	}
}
