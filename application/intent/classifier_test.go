package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pagecraft-backend/domain/core/valueobjects"
)

func TestClassify_Debug(t *testing.T) {
	cases := []string{
		"fix this TypeError: undefined is not a function",
		"Traceback (most recent call last): something broke",
		`File "app.py", line 42, in render`,
		"can you debug this error in the checkout flow",
		"panic: runtime error: index out of range",
	}
	for _, prompt := range cases {
		result := Classify(prompt, Context{})
		assert.Equal(t, KindDebug, result.Kind, "prompt: %s", prompt)
	}
}

func TestClassify_CreateApplication(t *testing.T) {
	cases := []string{
		"build an app with signup and login",
		"I need a site with a signup flow and a landing section",
		"generate an application using tailwind",
	}
	for _, prompt := range cases {
		result := Classify(prompt, Context{})
		assert.Equal(t, KindCreateApplication, result.Kind, "prompt: %s", prompt)
	}
}

func TestClassify_ModifyWithExistingForm(t *testing.T) {
	formID := valueobjects.NewNodeID()
	ctx := Context{
		ExistingKinds: map[string]valueobjects.NodeID{"form": formID},
	}

	result := Classify("align registration fields properly", ctx)

	assert.Equal(t, KindModify, result.Kind)
	assert.True(t, formID.Equals(result.TargetNodeID))
}

func TestClassify_ModifyWithSelectedNode(t *testing.T) {
	selected := valueobjects.NewNodeID()
	ctx := Context{SelectedNodeID: selected}

	result := Classify("change the background color", ctx)

	assert.Equal(t, KindModify, result.Kind)
	assert.True(t, selected.Equals(result.TargetNodeID))
}

func TestClassify_CreateNewOverridesModify(t *testing.T) {
	ctx := Context{
		SelectedNodeID: valueobjects.NewNodeID(),
		ExistingKinds:  map[string]valueobjects.NodeID{"button": valueobjects.NewNodeID()},
	}

	result := Classify("create a new button component", ctx)

	assert.Equal(t, KindCreateComponent, result.Kind)
}

func TestClassify_CreatePage(t *testing.T) {
	cases := []string{
		"create a login page",
		"make a landing for my product",
		"build a dashboard",
		"I want a full website",
	}
	for _, prompt := range cases {
		result := Classify(prompt, Context{})
		assert.Equal(t, KindCreatePage, result.Kind, "prompt: %s", prompt)
	}
}

func TestClassify_PageMentioningComponentStaysComponent(t *testing.T) {
	result := Classify("create a hero component for the landing page", Context{})
	assert.Equal(t, KindCreateComponent, result.Kind)
}

func TestClassify_Code(t *testing.T) {
	cases := []string{
		"write a utility function to debounce input",
		"give me an algorithm for sorting by date",
		"I need a hook for fetching data",
	}
	for _, prompt := range cases {
		result := Classify(prompt, Context{})
		assert.Equal(t, KindCode, result.Kind, "prompt: %s", prompt)
	}
}

func TestClassify_DefaultIsCreateComponent(t *testing.T) {
	cases := []string{
		"create a button",
		"make something nice",
		"a blue card with a title",
		"",
	}
	for _, prompt := range cases {
		result := Classify(prompt, Context{})
		assert.Equal(t, KindCreateComponent, result.Kind, "prompt: %s", prompt)
	}
}

func TestClassify_SharedRoleWordResolvesDeterministically(t *testing.T) {
	formID := valueobjects.NewNodeID()
	inputID := valueobjects.NewNodeID()
	ctx := Context{
		ExistingKinds: map[string]valueobjects.NodeID{
			"input": inputID,
			"form":  formID,
		},
	}

	// "field" is a role word for both form and input; the sorted kind
	// scan must land on the same node every run
	for i := 0; i < 50; i++ {
		result := Classify("adjust the field spacing", ctx)

		assert.Equal(t, KindModify, result.Kind)
		assert.True(t, formID.Equals(result.TargetNodeID))
	}
}

func TestClassify_SelectedNodeWinsOverKindScan(t *testing.T) {
	selected := valueobjects.NewNodeID()
	ctx := Context{
		SelectedNodeID: selected,
		ExistingKinds:  map[string]valueobjects.NodeID{"form": valueobjects.NewNodeID()},
	}

	result := Classify("align the form", ctx)

	assert.Equal(t, KindModify, result.Kind)
	assert.True(t, selected.Equals(result.TargetNodeID))
}

func TestClassify_AddIntoIsModify(t *testing.T) {
	formID := valueobjects.NewNodeID()
	ctx := Context{
		ExistingKinds: map[string]valueobjects.NodeID{"form": formID},
	}

	result := Classify("add a phone field into the form", ctx)

	assert.Equal(t, KindModify, result.Kind)
	assert.True(t, formID.Equals(result.TargetNodeID))
}
