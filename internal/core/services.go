package core

type Services struct {
	Cluster *ClusterService
}

func NewServices(db DB, pub Publisher) *Services {
	return &Services{
		Cluster: NewClusterService(db, pub),
	}
}
