package domain

// CanModify decide si un actor puede mutar un recurso: debe ser su dueño o
// admin. Pure function, independent of any session or framework mechanism.
func CanModify(actor Actor, ownerID string) bool {
	return actor.ID == ownerID || actor.IsAdmin()
}
