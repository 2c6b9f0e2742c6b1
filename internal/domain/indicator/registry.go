package indicator

import (
	"github.com/sodalab/behavio/internal/domain/group"
	"github.com/sodalab/behavio/internal/domain/record"
)

// Combined subset labels shared by several indicators.
var (
	callAndText       = group.Combined("callandtext", record.Call, record.Text)
	physicalAndStop   = group.Combined("physicalandstop", record.Physical, record.Stop)
	screenAndText     = group.Combined("screenandtext", record.Screen, record.Text)
	screenAndPhysical = group.Combined("screenandphysical", record.Screen, record.Physical)
)

func kinds(ks ...record.Interaction) []group.Subset {
	subsets := make([]group.Subset, len(ks))
	for i, k := range ks {
		subsets[i] = group.Kind(k)
	}
	return subsets
}

// Registry returns the full indicator battery in reporting order.
// Each descriptor declares the interaction subsets its function
// accepts and whether it needs the person-level configuration; the
// grouping engine dispatches on the declaration, not on the records.
func Registry(c Config) []group.Descriptor {
	return []group.Descriptor{
		{
			Name:    "interevent_time",
			Subsets: kinds(record.Screen),
			Compute: intereventTime,
		},
		{
			Name:    "number_of_contacts",
			Subsets: kinds(record.Call, record.Text, record.Physical, record.Stop),
			Compute: c.numberOfContacts,
		},
		{
			Name:    "number_of_interactions",
			Subsets: kinds(record.Call, record.Text, record.Physical, record.Stop),
			Compute: numberOfInteractions,
		},
		{
			Name:    "number_of_interactions_in",
			Subsets: kinds(record.Call, record.Text, record.Physical),
			Compute: numberOfInteractionsDirected(record.In),
		},
		{
			Name:    "number_of_interactions_out",
			Subsets: kinds(record.Call, record.Text, record.Physical),
			Compute: numberOfInteractionsDirected(record.Out),
		},
		{
			Name:    "entropy_of_contacts",
			Subsets: kinds(record.Call, record.Text, record.Physical, record.Stop),
			Compute: entropyOfContacts,
		},
		{
			Name:    "interactions_per_contact",
			Subsets: kinds(record.Call, record.Text, record.Physical, record.Stop),
			Compute: interactionsPerContact,
		},
		{
			Name:      "percent_nocturnal",
			Subsets:   kinds(record.Screen, record.Stop, record.Physical),
			NeedsUser: true,
			Compute:   percentNocturnal,
		},
		{
			Name:    "duration",
			Subsets: kinds(record.Call, record.Text, record.Physical, record.Screen, record.Stop),
			Compute: c.conversationDuration,
		},
		{
			Name:    "response_rate",
			Subsets: []group.Subset{callAndText},
			Compute: c.responseRate,
		},
		{
			Name:    "response_delay",
			Subsets: []group.Subset{callAndText},
			Compute: c.responseDelay,
		},
		{
			Name:    "percent_initiated_conversations",
			Subsets: []group.Subset{callAndText},
			Compute: c.conversationEdge(false),
		},
		{
			Name:    "percent_concluded_conversations",
			Subsets: []group.Subset{callAndText},
			Compute: c.conversationEdge(true),
		},
		{
			Name:    "overlap_conversations",
			Subsets: kinds(record.Text, record.Physical),
			Compute: c.overlapConversations,
		},
		{
			Name:    "overlap_screen_physical",
			Subsets: []group.Subset{screenAndPhysical},
			Compute: c.overlapScreenPhysical,
		},
		{
			Name:    "active_days",
			Subsets: kinds(record.Screen),
			Compute: activeDays,
		},
		{
			Name:    "percent_pareto_interactions",
			Subsets: kinds(record.Text, record.Physical),
			Compute: c.paretoInteractions,
		},
		{
			Name:    "percent_pareto_durations",
			Subsets: kinds(record.Call, record.Stop),
			Compute: c.paretoDurations,
		},
		{
			Name:    "balance_of_interactions",
			Subsets: kinds(record.Call, record.Text),
			Compute: balanceOfInteractions,
		},
		{
			Name:      "percent_interactions_campus",
			Subsets:   []group.Subset{physicalAndStop},
			NeedsUser: true,
			Compute:   percentInteractionsAt(PlaceCampus),
		},
		{
			Name:      "percent_interactions_home",
			Subsets:   []group.Subset{physicalAndStop},
			NeedsUser: true,
			Compute:   percentInteractionsAt(PlaceHome),
		},
		{
			Name:      "percent_interactions_other",
			Subsets:   []group.Subset{physicalAndStop},
			NeedsUser: true,
			Compute:   percentInteractionsAt(PlaceOther),
		},
		{
			Name:      "percent_outside_campus_from_campus",
			Subsets:   []group.Subset{physicalAndStop},
			NeedsUser: true,
			Compute:   percentOutsideCampusFromCampus,
		},
		{
			Name:      "percent_at_campus",
			Subsets:   kinds(record.Stop),
			NeedsUser: true,
			Compute:   percentAtPlace(PlaceCampus),
		},
		{
			Name:      "percent_at_home",
			Subsets:   kinds(record.Stop),
			NeedsUser: true,
			Compute:   percentAtPlace(PlaceHome),
		},
		{
			Name:      "percent_at_friday_bar",
			Subsets:   kinds(record.Stop),
			NeedsUser: true,
			Compute:   percentAtPlace(PlaceFridayBar),
		},
		{
			Name:    "percent_contacts_rarely_seen",
			Subsets: kinds(record.Physical, record.Stop),
			Compute: c.rarelySeenContacts,
		},
		{
			Name:    "first_seen_response_rate",
			Subsets: []group.Subset{screenAndText},
			Compute: firstSeenResponseRate,
		},
	}
}
