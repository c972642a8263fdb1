package llm

import (
	"testing"

	"github.com/ozelders/ozelders-api/internal/assistant"
)

func TestParseIntentJSON(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantNil    bool
		wantAction assistant.Action
	}{
		{
			name:       "plain json",
			content:    `{"action":"list_students"}`,
			wantAction: assistant.ActionListStudents,
		},
		{
			name:       "markdown fenced json",
			content:    "```json\n{\"action\":\"list_exams\",\"student_name\":\"Demo\"}\n```",
			wantAction: assistant.ActionListExams,
		},
		{
			name:       "fence without language tag",
			content:    "```\n{\"action\":\"list_topics\"}\n```",
			wantAction: assistant.ActionListTopics,
		},
		{
			name:       "prose around object",
			content:    `Here is the intent: {"action":"count_students"} as requested.`,
			wantAction: assistant.ActionCountStudents,
		},
		{
			name:       "nested object with braces in strings",
			content:    `note {"action":"create_assignment","title":"Küme {A}","description":null} end`,
			wantAction: assistant.ActionCreateAssignment,
		},
		{
			name:    "malformed json",
			content: `{"action":"list_students"`,
			wantNil: true,
		},
		{
			name:    "not json at all",
			content: "üzgünüm, anlayamadım",
			wantNil: true,
		},
		{
			name:    "empty",
			content: "   ",
			wantNil: true,
		},
		{
			name:    "unknown action",
			content: `{"action":"drop_tables"}`,
			wantNil: true,
		},
		{
			name:    "missing action",
			content: `{"student_name":"Demo"}`,
			wantNil: true,
		},
		{
			name:    "wrong field type",
			content: `{"action":"list_students","student_names":"Demo"}`,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseIntentJSON(tt.content)
			if tt.wantNil {
				if got != nil {
					t.Errorf("ParseIntentJSON(%q) = %+v, want nil", tt.content, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ParseIntentJSON(%q) = nil, want action %s", tt.content, tt.wantAction)
			}
			if got.Action != tt.wantAction {
				t.Errorf("action = %s, want %s", got.Action, tt.wantAction)
			}
		})
	}
}

func TestParseIntentJSON_ClearsUnknownStatus(t *testing.T) {
	got := ParseIntentJSON(`{"action":"list_assignments","student_name":"Demo","status":"finished"}`)
	if got == nil {
		t.Fatal("ParseIntentJSON returned nil")
	}
	if got.Status != "" {
		t.Errorf("status = %q, want empty after enum check", got.Status)
	}
	if got.StudentName != "Demo" {
		t.Errorf("student_name = %q, want Demo", got.StudentName)
	}
}

func TestFirstObjectSpan(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", `x {"a":1} y`, `{"a":1}`},
		{"nested", `{"a":{"b":2}} trailing {"c":3}`, `{"a":{"b":2}}`},
		{"brace inside string", `{"a":"}"}`, `{"a":"}"}`},
		{"escaped quote", `{"a":"\"}"}`, `{"a":"\"}"}`},
		{"unbalanced", `{"a":1`, ""},
		{"no object", "plain text", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstObjectSpan(tt.input); got != tt.want {
				t.Errorf("firstObjectSpan(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
