package domain

// Role identifica al autor de un turno de conversación.
type Role string

const (
	RoleUser   Role = "user"
	RoleModel  Role = "model"
	RoleSystem Role = "system"
)

// Valid indica si el rol es uno de los conocidos.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModel, RoleSystem:
		return true
	}
	return false
}

// Turn es un mensaje inmutable dentro de una conversación. La posición en el log es la única clave de orden.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// TurnResult es lo que devuelve un ciclo completo de conversación al cliente.
type TurnResult struct {
	ResponseText string `json:"responseText"`
	NewHistory   []Turn `json:"newHistory"`
}
