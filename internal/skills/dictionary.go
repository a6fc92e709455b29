// Package skills maps raw skill spellings to canonical names and finds skills in resume text.
package skills

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Dictionary is the set of known canonical skills plus alias spellings.
// The on-disk format is JSON or YAML:
//
//	{"skills": ["Java", ...], "normalization_map": {"k8s": "Kubernetes", ...}}
type Dictionary struct {
	Skills           []string          `yaml:"skills" json:"skills"`
	NormalizationMap map[string]string `yaml:"normalization_map" json:"normalization_map"`
}

// LoadDictionary reads a skills dictionary file. JSON files parse as YAML.
func LoadDictionary(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read skills dictionary %s: %w", path, err)
	}

	var dict Dictionary
	if err := yaml.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("failed to parse skills dictionary %s: %w", path, err)
	}
	if len(dict.Skills) == 0 && len(dict.NormalizationMap) == 0 {
		return nil, fmt.Errorf("skills dictionary %s is empty", path)
	}
	return &dict, nil
}

// LoadOrDefault loads the dictionary at path, or returns DefaultDictionary when path is empty.
func LoadOrDefault(path string) (*Dictionary, error) {
	if path == "" {
		return DefaultDictionary(), nil
	}
	return LoadDictionary(path)
}

// synonyms returns canonical name -> lowercase spellings, with canonicals in a
// stable order: dictionary skills first, then alias-only canonicals sorted.
func (d *Dictionary) synonyms() ([]string, map[string][]string) {
	seen := make(map[string]map[string]bool)
	var order []string
	add := func(canonical, spelling string) {
		if canonical == "" {
			return
		}
		if _, ok := seen[canonical]; !ok {
			seen[canonical] = map[string]bool{strings.ToLower(canonical): true}
			order = append(order, canonical)
		}
		if spelling != "" {
			seen[canonical][strings.ToLower(spelling)] = true
		}
	}

	for _, s := range d.Skills {
		add(strings.TrimSpace(s), "")
	}

	variants := make([]string, 0, len(d.NormalizationMap))
	for v := range d.NormalizationMap {
		variants = append(variants, v)
	}
	sort.Strings(variants)
	for _, v := range variants {
		add(strings.TrimSpace(d.NormalizationMap[v]), strings.TrimSpace(v))
	}

	out := make(map[string][]string, len(seen))
	for canonical, set := range seen {
		list := make([]string, 0, len(set))
		for s := range set {
			list = append(list, s)
		}
		// Longest spelling first so "spring boot" is tried before "spring".
		sort.Slice(list, func(i, j int) bool {
			if len(list[i]) != len(list[j]) {
				return len(list[i]) > len(list[j])
			}
			return list[i] < list[j]
		})
		out[canonical] = list
	}
	return order, out
}

// DefaultDictionary returns the built-in skills dictionary.
func DefaultDictionary() *Dictionary {
	return &Dictionary{
		Skills: []string{
			"Java", "Python", "Go", "JavaScript", "TypeScript", "C", "C++", "C#", "Ruby", "PHP",
			"Kotlin", "Scala", "Rust", "Swift", "SQL", "HTML", "CSS",
			"Spring Boot", "Hibernate", "Django", "Flask", "FastAPI", "React", "Angular", "Vue",
			"Node.js", "Express", ".NET",
			"AWS", "Azure", "GCP", "Docker", "Kubernetes", "Terraform", "Jenkins", "Git", "Linux",
			"Microservices", "REST", "GraphQL", "Kafka", "RabbitMQ",
			"PostgreSQL", "MySQL", "MongoDB", "Redis", "Elasticsearch", "Oracle",
			"Machine Learning", "Deep Learning", "NLP", "TensorFlow", "PyTorch", "Pandas", "NumPy",
			"Scikit-learn", "Spark", "Hadoop", "Tableau", "Power BI", "Excel",
			"Selenium", "JUnit", "Agile", "Scrum",
		},
		NormalizationMap: map[string]string{
			"golang":              "Go",
			"js":                  "JavaScript",
			"ts":                  "TypeScript",
			"py":                  "Python",
			"cpp":                 "C++",
			"csharp":              "C#",
			"springboot":          "Spring Boot",
			"spring":              "Spring Boot",
			"reactjs":             "React",
			"react.js":            "React",
			"angularjs":           "Angular",
			"vuejs":               "Vue",
			"vue.js":              "Vue",
			"nodejs":              "Node.js",
			"node":                "Node.js",
			"dotnet":              ".NET",
			"amazon web services": "AWS",
			"google cloud":        "GCP",
			"k8s":                 "Kubernetes",
			"postgres":            "PostgreSQL",
			"postgresql":          "PostgreSQL",
			"mongo":               "MongoDB",
			"elastic":             "Elasticsearch",
			"ml":                  "Machine Learning",
			"dl":                  "Deep Learning",
			"sklearn":             "Scikit-learn",
			"pyspark":             "Spark",
			"apache spark":        "Spark",
			"apache kafka":        "Kafka",
			"powerbi":             "Power BI",
			"restful":             "REST",
			"rest api":            "REST",
		},
	}
}
