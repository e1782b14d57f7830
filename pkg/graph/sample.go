package graph

// Sample returns the demo dataset: three clusters (Planets, Animal, Plant)
// with their members. Every call builds a fresh Graph.
func Sample() *Graph {
	return MustBuild(SampleNodes(), SampleLinks())
}

// SampleNodes returns the node list of [Sample].
func SampleNodes() []Node {
	return []Node{
		{ID: "1", Name: "Planets", Cluster: true, Val: 50, Color: "red"},
		{ID: "2", Name: "Mars", Val: 1, Color: "red"},
		{ID: "3", Name: "Venus", Color: "red"},
		{ID: "10", Name: "Neptune", Color: "red"},
		{ID: "4", Name: "Animal", Cluster: true, Val: 70},
		{ID: "5", Name: "Tiger"},
		{ID: "6", Name: "Dog"},
		{ID: "7", Name: "Wolf"},
		{ID: "8", Name: "Elephant"},
		{ID: "9", Name: "Cat"},
		{ID: "11", Name: "Plant", Cluster: true, Val: 30, Color: "yellow"},
		{ID: "12", Name: "Tree", Color: "yellow"},
		{ID: "13", Name: "Flower", Color: "yellow"},
	}
}

// SampleLinks returns the link list of [Sample].
func SampleLinks() []Link {
	return []Link{
		{Source: "1", Target: "2"},
		{Source: "1", Target: "3"},
		{Source: "1", Target: "10"},
		{Source: "4", Target: "5"},
		{Source: "4", Target: "6"},
		{Source: "4", Target: "7"},
		{Source: "4", Target: "8"},
		{Source: "4", Target: "9"},
		{Source: "11", Target: "12"},
		{Source: "11", Target: "13"},
	}
}
