package domain

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type TriggerType string

const (
	TriggerTaskCreated     TriggerType = "task_created"
	TriggerTaskMoved       TriggerType = "task_moved"
	TriggerPriorityChanged TriggerType = "priority_changed"
	TriggerTaskCompleted   TriggerType = "task_completed"
	TriggerDueDateSet      TriggerType = "due_date_set"
)

type ActionType string

const (
	ActionMoveToColumn     ActionType = "move_to_column"
	ActionSetPriority      ActionType = "set_priority"
	ActionAddLabel         ActionType = "add_label"
	ActionAssignUser       ActionType = "assign_user"
	ActionSendNotification ActionType = "send_notification"
)

// Config keys.
const (
	KeyColumnID     = "column_id"
	KeyFromColumnID = "from_column_id"
	KeyToColumnID   = "to_column_id"
	KeyToPriority   = "to_priority"
	KeyPriority     = "priority"
	KeyLabelID      = "label_id"
	KeyUserID       = "user_id"
	KeyMessage      = "message"
)

// AutomationRule runs its action whenever a task change on the board
// matches its trigger.
type AutomationRule struct {
	ID            string            `json:"id" gorm:"primaryKey"`
	BoardID       string            `json:"board_id" gorm:"index;not null"`
	Name          string            `json:"name" gorm:"not null"`
	TriggerType   TriggerType       `json:"trigger_type" gorm:"not null"`
	TriggerConfig datatypes.JSONMap `json:"trigger_config"`
	ActionType    ActionType        `json:"action_type" gorm:"not null"`
	ActionConfig  datatypes.JSONMap `json:"action_config"`
	IsActive      bool              `json:"is_active" gorm:"default:true"`
	CreatedBy     string            `json:"created_by"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func (AutomationRule) TableName() string {
	return "automation_rules"
}

// Str reads a string config value; missing or non-string values read as "".
func Str(cfg datatypes.JSONMap, key string) string {
	v, _ := cfg[key].(string)
	return v
}

var triggerKeys = map[TriggerType]struct {
	required []string
	optional []string
}{
	TriggerTaskCreated:     {optional: []string{KeyColumnID}},
	TriggerTaskMoved:       {optional: []string{KeyFromColumnID, KeyToColumnID}},
	TriggerPriorityChanged: {optional: []string{KeyToPriority}},
	TriggerTaskCompleted:   {},
	TriggerDueDateSet:      {},
}

var actionKeys = map[ActionType]struct {
	required []string
	optional []string
}{
	ActionMoveToColumn:     {required: []string{KeyColumnID}},
	ActionSetPriority:      {required: []string{KeyPriority}},
	ActionAddLabel:         {required: []string{KeyLabelID}},
	ActionAssignUser:       {required: []string{KeyUserID}},
	ActionSendNotification: {required: []string{KeyMessage}, optional: []string{KeyUserID}},
}

func validPriority(p string) bool {
	return p == "low" || p == "medium" || p == "high"
}

// Validate checks the trigger and action types and the config keys each
// of them needs.
func (r *AutomationRule) Validate() error {
	trig, ok := triggerKeys[r.TriggerType]
	if !ok {
		return fmt.Errorf("unknown trigger type %q", r.TriggerType)
	}
	if err := checkConfig("trigger", r.TriggerConfig, trig.required, trig.optional); err != nil {
		return err
	}
	if p := Str(r.TriggerConfig, KeyToPriority); p != "" && !validPriority(p) {
		return fmt.Errorf("trigger to_priority must be low, medium or high")
	}

	act, ok := actionKeys[r.ActionType]
	if !ok {
		return fmt.Errorf("unknown action type %q", r.ActionType)
	}
	if err := checkConfig("action", r.ActionConfig, act.required, act.optional); err != nil {
		return err
	}
	if r.ActionType == ActionSetPriority && !validPriority(Str(r.ActionConfig, KeyPriority)) {
		return fmt.Errorf("action priority must be low, medium or high")
	}
	return nil
}

func checkConfig(kind string, cfg datatypes.JSONMap, required, optional []string) error {
	allowed := make(map[string]bool, len(required)+len(optional))
	for _, k := range required {
		allowed[k] = true
		if Str(cfg, k) == "" {
			return fmt.Errorf("%s config needs %s", kind, k)
		}
	}
	for _, k := range optional {
		allowed[k] = true
	}
	for k, v := range cfg {
		if !allowed[k] {
			return fmt.Errorf("%s config does not accept %s", kind, k)
		}
		if _, isString := v.(string); !isString {
			return fmt.Errorf("%s config %s must be a string", kind, k)
		}
	}
	return nil
}
