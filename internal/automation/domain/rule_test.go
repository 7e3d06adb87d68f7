package domain

import (
	"testing"

	"gorm.io/datatypes"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		rule    AutomationRule
		wantErr bool
	}{
		{
			name: "move on create",
			rule: AutomationRule{TriggerType: TriggerTaskCreated, ActionType: ActionMoveToColumn,
				ActionConfig: datatypes.JSONMap{KeyColumnID: "c2"}},
		},
		{
			name: "notify on completion",
			rule: AutomationRule{TriggerType: TriggerTaskCompleted, ActionType: ActionSendNotification,
				ActionConfig: datatypes.JSONMap{KeyMessage: "done!"}},
		},
		{
			name:    "unknown trigger",
			rule:    AutomationRule{TriggerType: "task_exploded", ActionType: ActionAddLabel, ActionConfig: datatypes.JSONMap{KeyLabelID: "l1"}},
			wantErr: true,
		},
		{
			name:    "missing required action key",
			rule:    AutomationRule{TriggerType: TriggerDueDateSet, ActionType: ActionAssignUser},
			wantErr: true,
		},
		{
			name: "bad priority",
			rule: AutomationRule{TriggerType: TriggerTaskMoved, ActionType: ActionSetPriority,
				ActionConfig: datatypes.JSONMap{KeyPriority: "urgent"}},
			wantErr: true,
		},
		{
			name: "unexpected trigger key",
			rule: AutomationRule{TriggerType: TriggerTaskCompleted, TriggerConfig: datatypes.JSONMap{KeyColumnID: "c1"},
				ActionType: ActionAddLabel, ActionConfig: datatypes.JSONMap{KeyLabelID: "l1"}},
			wantErr: true,
		},
		{
			name: "non-string value",
			rule: AutomationRule{TriggerType: TriggerTaskCreated, ActionType: ActionAddLabel,
				ActionConfig: datatypes.JSONMap{KeyLabelID: 7.0}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
