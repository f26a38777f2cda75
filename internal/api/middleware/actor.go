package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/m04kA/SMC-SalonService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonService/internal/domain"
)

// Заголовки, которые выставляет доверенный gateway после аутентификации
const (
	HeaderUserID     = "X-User-ID"
	HeaderUserRole   = "X-User-Role"
	HeaderBusinessID = "X-Business-ID"
)

const (
	msgUnauthorized   = "требуется аутентификация"
	msgInvalidHeaders = "некорректные заголовки пользователя"
)

type actorKey struct{}

// PermissionRepository источник прав ролей
type PermissionRepository interface {
	GetRolePermissions(ctx context.Context, businessID int64, role domain.Role) ([]domain.Permission, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Actor извлекает пользователя из заголовков gateway и строит его PermissionSet один раз на запрос
func Actor(permissions PermissionRepository, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawUser := r.Header.Get(HeaderUserID)
			if rawUser == "" {
				handlers.RespondUnauthorized(w, msgUnauthorized)
				return
			}

			actor, err := parseActor(rawUser, r.Header.Get(HeaderUserRole), r.Header.Get(HeaderBusinessID))
			if err != nil {
				logger.Warn("%s %s - invalid actor headers: %v", r.Method, r.URL.Path, err)
				handlers.RespondBadRequest(w, msgInvalidHeaders)
				return
			}

			var perms []domain.Permission
			// Владельцу и администратору права не нужны, они проходят любые проверки
			if !actor.Role.IsElevated() {
				perms, err = permissions.GetRolePermissions(r.Context(), actor.BusinessID, actor.Role)
				if err != nil {
					logger.Error("%s %s - failed to load permissions: business=%d, role=%s, error=%v",
						r.Method, r.URL.Path, actor.BusinessID, actor.Role, err)
					handlers.RespondInternalError(w)
					return
				}
			}
			actor.Permissions = domain.NewPermissionSet(actor.Role, perms...)

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// WithActor кладет пользователя в контекст
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext возвращает пользователя, положенного middleware Actor
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	return actor, ok
}

func parseActor(rawUser, rawRole, rawBusiness string) (domain.Actor, error) {
	userID, err := strconv.ParseInt(rawUser, 10, 64)
	if err != nil || userID <= 0 {
		return domain.Actor{}, errInvalidHeader(HeaderUserID, rawUser)
	}

	businessID, err := strconv.ParseInt(rawBusiness, 10, 64)
	if err != nil || businessID <= 0 {
		return domain.Actor{}, errInvalidHeader(HeaderBusinessID, rawBusiness)
	}

	role := domain.Role(strings.ToLower(strings.TrimSpace(rawRole)))
	if !role.IsValid() {
		return domain.Actor{}, errInvalidHeader(HeaderUserRole, rawRole)
	}

	return domain.Actor{ID: userID, BusinessID: businessID, Role: role}, nil
}
