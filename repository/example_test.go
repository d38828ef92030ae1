package repository_test

import (
	"context"
	"fmt"

	"github.com/erraggy/jsonschema/fetch"
	"github.com/erraggy/jsonschema/jsonvalue"
	"github.com/erraggy/jsonschema/repository"
)

func ExampleRepository_Validator() {
	repo, err := repository.New()
	if err != nil {
		fmt.Println(err)
		return
	}
	doc, _ := jsonvalue.Decode([]byte(`{"type": "array", "items": {"type": "string"}}`))
	v, err := repo.Validator(doc)
	if err != nil {
		fmt.Println(err)
		return
	}

	result, _ := v.Validate([]any{"a", 1.0})
	fmt.Println(result.Valid)
	for _, unit := range result.Errors {
		fmt.Println(unit.KeywordLocation, unit.Error)
	}
	// Output:
	// false
	// /items Items did not match schema.
	// /items/type Instance type "number" is invalid. Expected "string".
}

func ExampleRepository_LoadReferenced() {
	remote := fetch.MapFetcher{
		"https://example.com/name.json": []byte(`{"type": "string", "minLength": 1}`),
	}
	repo, _ := repository.New(repository.WithFetcher(remote))
	doc, _ := jsonvalue.Decode([]byte(`{"$id": "https://example.com/person.json", "properties": {"name": {"$ref": "name.json"}}}`))
	if _, err := repo.Dereference(doc); err != nil {
		fmt.Println(err)
		return
	}
	if err := repo.LoadReferenced(context.Background()); err != nil {
		fmt.Println(err)
		return
	}

	v, _ := repo.Validator(doc)
	instance, _ := jsonvalue.Decode([]byte(`{"name": ""}`))
	result, _ := v.Validate(instance)
	fmt.Println(result.Valid)
	// Output:
	// false
}

func ExampleRepository_Resolve() {
	repo, _ := repository.New()
	doc, _ := jsonvalue.Decode([]byte(`{
		"$defs": {"port": {"type": "integer", "maximum": 65535}},
		"properties": {"http": {"$ref": "#/$defs/port"}, "https": {"$ref": "#/$defs/port"}}
	}`))

	resolved, err := repo.Resolve(doc)
	if err != nil {
		fmt.Println(err)
		return
	}
	out, _ := jsonvalue.Marshal(resolved)
	fmt.Println(string(out))
	// Output:
	// {"properties":{"http":{"type":"integer","maximum":65535},"https":{"type":"integer","maximum":65535}}}
}
