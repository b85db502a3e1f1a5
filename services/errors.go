package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ошибки валидации и бизнес-правил
	ErrValidationFailed         = errors.New("validation failed")
	ErrPasswordTooShort         = errors.New("password is too short")
	ErrInvalidGameweek          = errors.New("gameweek does not exist")
	ErrTooManyScorers           = errors.New("more scorers than predicted goals")
	ErrUnknownChip              = errors.New("unknown chip")
	ErrChipNotGameweekScoped    = errors.New("chip cannot be activated for a whole gameweek")
	ErrPredictionDeadlinePassed = errors.New("prediction deadline has passed")
	ErrPredictionLocked         = errors.New("prediction can no longer be changed")
	ErrGameweekLocked           = errors.New("gameweek has already started")
	ErrLeagueNameRequired       = errors.New("league name is required")
	ErrUnsupportedAvatarType    = errors.New("unsupported avatar content type")
	ErrAvatarStorageDisabled    = errors.New("avatar storage is not configured")

	// Ошибки конфликтов
	ErrUserEmailConflict          = errors.New("email address is already in use")
	ErrUserNicknameConflict       = errors.New("nickname is already in use")
	ErrFixtureExternalRefConflict = errors.New("fixture external reference is already in use")
	ErrChipAlreadyActive          = errors.New("chip is already active for this gameweek")
	ErrAlreadyLeagueMember        = errors.New("user is already a member of this league")

	// Ошибки аутентификации и авторизации
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")
	ErrNotLeagueMember    = errors.New("only league members can view this league")

	// Не найдено
	ErrUserNotFound       = errors.New("user not found")
	ErrFixtureNotFound    = errors.New("fixture not found")
	ErrPredictionNotFound = errors.New("prediction not found")
	ErrChipNotActive      = errors.New("chip is not active for this gameweek")
	ErrLeagueNotFound     = errors.New("league not found")
	ErrNoFixtures         = errors.New("no fixtures have been scheduled")
)
