package ast

import (
	"fmt"
	"testing"
)

func TestIndexTracksAdds(t *testing.T) {
	spec := NewSpec()
	spec.Models = append(spec.Models, &Model{Name: "User", Fields: []*Field{{Name: "email", Type: "email"}}})
	ix := NewIndex(spec)

	if ix.Model("User") == nil || ix.Field(ix.Model("User"), "email") == nil {
		t.Fatal("existing declarations not indexed")
	}

	task := &Model{Name: "Task"}
	ix.AddModel(task)
	ix.AddField(task, &Field{Name: "title", Type: "text"})
	ix.AddScreen(&Screen{Name: "Tasks", Model: "Task"})

	if len(spec.Models) != 2 || spec.Models[1] != task {
		t.Errorf("models = %v", spec.Models)
	}
	if ix.Field(task, "title") == nil || len(task.Fields) != 1 {
		t.Error("field not added")
	}
	if ix.Screen("Tasks") == nil || spec.Screen("Tasks") == nil {
		t.Error("screen not added")
	}
	if ix.Model("Missing") != nil || ix.Field(task, "missing") != nil {
		t.Error("unexpected lookup hit")
	}
}

func TestIndexPutThemeReplacesInPlace(t *testing.T) {
	spec := NewSpec()
	ix := NewIndex(spec)

	if ix.PutTheme(&Theme{Name: "A"}) || ix.PutTheme(&Theme{Name: "B"}) {
		t.Fatal("new themes reported as replaced")
	}
	later := &Theme{Name: "A", Title: "later"}
	if !ix.PutTheme(later) {
		t.Error("duplicate theme not replaced")
	}
	if len(spec.Themes) != 2 || spec.Themes[0] != later || spec.Themes[1].Name != "B" {
		t.Errorf("themes = %v", spec.Themes)
	}
	if ix.Theme("A") != later {
		t.Error("lookup returned the replaced theme")
	}
}

func TestIndexManyModels(t *testing.T) {
	spec := NewSpec()
	ix := NewIndex(spec)
	for i := range 5000 {
		name := fmt.Sprintf("M%d", i)
		if ix.Model(name) != nil {
			t.Fatalf("%s reported before add", name)
		}
		ix.AddModel(&Model{Name: name})
	}
	if len(spec.Models) != 5000 || ix.Model("M4999") == nil {
		t.Error("models not all indexed")
	}
}
