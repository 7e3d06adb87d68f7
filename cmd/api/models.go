package api

import (
	authdomain "kanban-backend/internal/auth/domain"
	automationdomain "kanban-backend/internal/automation/domain"
	boarddomain "kanban-backend/internal/board/domain"
	customfielddomain "kanban-backend/internal/customfield/domain"
	notificationdomain "kanban-backend/internal/notification/domain"
	taskdomain "kanban-backend/internal/task/domain"
	teamdomain "kanban-backend/internal/team/domain"
	"kanban-backend/pkg/kvstore"
)

// Models lists every table the server owns, for AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&authdomain.User{},
		&authdomain.RefreshToken{},
		&authdomain.DeviceToken{},
		&authdomain.Profile{},
		&teamdomain.Project{},
		&teamdomain.ProjectMember{},
		&teamdomain.TeamMember{},
		&teamdomain.TeamInvitation{},
		&boarddomain.Board{},
		&boarddomain.Column{},
		&boarddomain.Label{},
		&taskdomain.Task{},
		&taskdomain.Tag{},
		&taskdomain.Subtask{},
		&taskdomain.TaskLabel{},
		&taskdomain.TaskAssignee{},
		&taskdomain.Attachment{},
		&taskdomain.StarredTask{},
		&customfielddomain.CustomField{},
		&customfielddomain.CustomFieldValue{},
		&automationdomain.AutomationRule{},
		&notificationdomain.Notification{},
		&kvstore.Setting{},
	}
}
