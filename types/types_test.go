package types

import (
	"encoding/json"
	"testing"
)

func TestChatParamsValidate(t *testing.T) {
	params := &ChatParams{ConversationID: "c1", Message: "hello"}
	if errs := params.Validate(); errs != nil {
		t.Errorf("valid params failed validation: %v", errs)
	}
}

func TestChatParamsValidateMissingFields(t *testing.T) {
	params := &ChatParams{ConversationID: "c1"}
	errs := params.Validate()
	if errs == nil {
		t.Fatal("expected validation errors for missing message")
	}
	if _, ok := errs["Message"]; !ok {
		t.Errorf("errors = %v, want Message entry", errs)
	}

	params = &ChatParams{Message: "hi"}
	if errs := params.Validate(); errs["ConversationID"] == "" {
		t.Errorf("errors = %v, want ConversationID entry", errs)
	}
}

func TestChatParamsContextOptional(t *testing.T) {
	params := &ChatParams{ConversationID: "c1", Message: "hello", Context: ""}
	if errs := params.Validate(); errs != nil {
		t.Errorf("context should be optional: %v", errs)
	}
}

func TestEntitiesJSONKeys(t *testing.T) {
	data, err := json.Marshal(Entities{OrderNumber: "123456"})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"order_number":"123456","phone_number":"","address":""}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}
