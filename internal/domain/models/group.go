package models

// ResolvedContract is a request that survived fetching and mapping
// resolution: it knows its canonical name, where its source lives, and what
// the deployment's compiler settings were.
type ResolvedContract struct {
	Request    ContractRequest
	Canonical  string
	Entry      *MappingEntry
	Deployment *DeploymentInfo
}

// ArtifactName returns the name to look up in build output.
func (c *ResolvedContract) ArtifactName() string {
	return c.Entry.Artifact(c.Canonical)
}

// BuildGroup clusters resolved contracts sharing a (repository, ref,
// compiler settings) fingerprint. The scheduler owns it: the group is built
// at most once and Artifacts is populated by that single build, keyed by
// artifact name.
type BuildGroup struct {
	Key       GroupKey
	Members   []*ResolvedContract
	Artifacts map[string]string
}

// Repository and Ref identify the group's checkout.
func (g *BuildGroup) Repository() string { return g.Key.Repository }
func (g *BuildGroup) Ref() string        { return g.Key.Ref }
