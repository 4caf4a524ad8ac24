// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package prompts

import "strings"

// Default returns the built-in templates. The text below writes code fences
// as ~~~ so it can live in raw string literals; Default swaps them for
// backtick fences.
func Default() Set {
	s := Set{
		HighSystem: highSystem,
		HighPrompt: highPrompt,
		MidSystem:  midSystem,
		MidPrompt:  midPrompt,
		LowSystem:  lowSystem,
		LowPrompt:  lowPrompt,

		CoherenceSystem: coherenceSystem,
		CoherencePrompt: coherencePrompt,
		NoveltySystem:   noveltySystem,
		NoveltyPrompt:   noveltyPrompt,
		ValiditySystem:  validitySystem,
		ValidityPrompt:  validityPrompt,
	}
	for _, f := range []*string{
		&s.HighPrompt, &s.MidPrompt, &s.LowPrompt,
		&s.CoherencePrompt, &s.NoveltySystem, &s.NoveltyPrompt, &s.ValidityPrompt,
	} {
		*f = strings.ReplaceAll(*f, "~~~", "```")
	}
	return s
}

const highSystem = `You are a theoretical neuroscientist developing unifying models of brain function.`

const highPrompt = `You are a theoretical neuroscientist developing unifying models of brain function.
Generate a new, high-level theory explaining how the neocortex processes information.
This theory should be inspired by first principles (e.g., physics, dynamical systems, information theory).
Avoid specific neural circuit details for now.

Respond in the following format:
THOUGHT:
<THOUGHT>

NEW THEORY JSON:
~~~json
<JSON>
~~~

In <THOUGHT>, first briefly discuss your intuitions and motivations for the theory.
Explain how it unifies neuroscience perspectives.

In <JSON>, provide the new theory with these fields:
- "Name": A shortened descriptor of the theory. Lowercase, no spaces, underscores allowed.
- "Title": A full title summarizing the theory.
- "Description": A 2-3 sentence explanation of the theory.
- "Significance": A rating from 1 to 10 (lowest to highest).

Here are the previous high-level theories you've generated:
{{.Previous}}
`

const midSystem = `You are a computational neuroscientist designing models of cortical computation.`

const midPrompt = `You are a computational neuroscientist designing models of cortical computation.
Given the high-level theory:
"{{.Theory}}",
convert it into a functional model of neocortical computation.
Consider frameworks such as predictive coding, reservoir computing, or attractor networks.

Respond in the following format:
THOUGHT:
<THOUGHT>

NEW MODEL JSON:
~~~json
<JSON>
~~~

In <THOUGHT>, first analyze the implications of the theory for cortical computation.
Justify your choice of computational model.

In <JSON>, provide the mid-level framework with these fields:
- "Name": A shortened descriptor of the computational model.
- "Title": A full title summarizing the model.
- "Description": A 2-3 sentence explanation of the model.
- "Theoretical_Basis": The neuroscience principles supporting this model.
- "Relation_to_Theory": How this model implements the high-level theory.
- "Feasibility": A rating from 1 to 10.

Here are the previous high and mid-level theories you've generated:
{{.Previous}}
`

const lowSystem = `You are a neuroscientist studying synaptic learning rules and cortical circuits.`

const lowPrompt = `You are a neuroscientist studying synaptic learning rules and cortical circuits.
Given the computational framework:
"{{.Model}}",
derive concrete neural mechanisms that could implement this model in the cortex.
Specify synaptic plasticity, inhibitory/excitatory interactions, and real-time learning mechanisms.

Respond in the following format:
THOUGHT:
<THOUGHT>

NEW MECHANISM JSON:
~~~json
<JSON>
~~~

In <THOUGHT>, explain the constraints and biological plausibility of the learning rule.

In <JSON>, provide the low-level mechanism with these fields:
- "Name": A shortened descriptor of the mechanism.
- "Title": A full title summarizing the mechanism.
- "Description": A 2-3 sentence explanation.
- "Biological_Basis": How this mechanism maps to experimental neuroscience findings.
- "Relation_to_Model": How this mechanism implements the mid-level computational framework.
- "Testability": A rating from 1 to 10.

Here are the previous high, mid, and low-level theories you've generated:
{{.Previous}}
`

const coherenceSystem = `You are a critical reviewer evaluating the coherence of a neuroscience theory. You will have {{.Rounds}} rounds to review. You do not need to use them all.`

const coherencePrompt = `You are a critical reviewer evaluating the coherence of a neuroscience theory.

This is round {{.Round}}/{{.Rounds}}.
Evaluate the following neuroscience theory for coherence.

High-Level Theory JSON:
~~~json
{{.High}}
~~~

Mid-Level Theory JSON:
~~~json
{{.Mid}}
~~~

Low-Level Theory JSON:
~~~json
{{.Low}}
~~~
{{if .Context}}
For reference, these theories were generated earlier. Keep this one distinct from them:
{{.Context}}
{{end}}
Determine whether:
1. A low-level insight invalidates or refines the high-level theory.
2. A mid-level framework contradicts or suggests improvements to the high-level theory.
3. The high-level theory is too vague and needs grounding in concrete mechanisms.

Modify any level as needed.

Respond in the following format:
THOUGHT:
<THOUGHT>

UPDATED JSON:
~~~json
{
  "High-Level": <UPDATED_HIGH_LEVEL_JSON>,
  "Mid-Level": <UPDATED_MID_LEVEL_JSON>,
  "Low-Level": <UPDATED_LOW_LEVEL_JSON>
}
~~~

Ensure that the JSON is well-formatted and parsable.
If no changes are needed, include "I am done" before the JSON and return the previous JSON structures EXACTLY.
ONLY INCLUDE "I am done" IF YOU ARE MAKING NO MORE CHANGES.
`

const noveltySystem = `You are an AI researcher and neuroscientist critically evaluating the novelty of theoretical neuroscience ideas.
Your goal is to determine whether an idea significantly contributes new insights, rather than repeating existing literature.

You will be given a multi-level neuroscience theory, consisting of:
1. A high-level theory (broad principles and unifying framework).
2. A mid-level computational model (specific information processing mechanisms).
3. A low-level biological mechanism (synaptic/plasticity-level implementation).

Your job is to:
- Search the neuroscience literature using OpenAlex.
- Identify whether any existing papers significantly overlap with any level of the idea.
- Make a decision:
  - If the idea has a close match, mark it as not novel.
  - If the idea is not well-explored, mark it as novel.

You will be given {{.Rounds}} rounds to decide, but you may stop early if conclusive.

---

NEUROSCIENCE THEORY TO EVALUATE:

High-Level Theory JSON:
~~~json
{{.High}}
~~~

Mid-Level Theory JSON:
~~~json
{{.Mid}}
~~~

Low-Level Theory JSON:
~~~json
{{.Low}}
~~~
`

const noveltyPrompt = `This is round {{.Round}}/{{.Rounds}}.
You are checking the novelty of a neuroscience theory:

High-Level Theory JSON:
~~~json
{{.High}}
~~~

Mid-Level Theory JSON:
~~~json
{{.Mid}}
~~~

Low-Level Theory JSON:
~~~json
{{.Low}}
~~~

The results of the last query are:
{{.Context}}

THOUGHT:
<THOUGHT>

RESPONSE:
~~~json
<JSON>
~~~

In <THOUGHT>, briefly analyze whether the theory is novel or already covered by existing research.
If you find strong overlap, add "Decision made: not novel."
If no strong overlap is found, add "Decision made: novel."

In <JSON>, return only one field:
- "Query": A search term to find relevant neuroscience papers.
You must make a query if you have not decided this round. If you've already decided, leave this empty.
A query will work best if you are able to recall the exact name of the paper you are looking for, or the authors.
This JSON will be automatically parsed, so ensure the format is precise.
`

const validitySystem = `You are an experimental neuroscientist evaluating the validity of a neuroscience theory. You will have {{.Rounds}} rounds to review and critique. You do not need to use them all.`

const validityPrompt = `You are an experimental neuroscientist evaluating the validity of a neuroscience theory.

This is round {{.Round}}/{{.Rounds}}.
Evaluate the following neuroscience theory for validity.

High-Level Theory JSON:
~~~json
{{.High}}
~~~

Mid-Level Theory JSON:
~~~json
{{.Mid}}
~~~

Low-Level Theory JSON:
~~~json
{{.Low}}
~~~

Determine whether:
1. There exists contradictory experimental neuroscience evidence that completely invalidates any of the 3 levels of the theory.
2. There are inconsistencies between the 3 levels that need to be resolved, where such inconsistencies are strongly grounded in neuroscience literature or experiments.

If you identify any issues, suggest modifications to the theory at any level.

Respond in the following format:
THOUGHT:
<THOUGHT>

UPDATED JSON:
~~~json
{
  "High-Level": <UPDATED_HIGH_LEVEL_JSON>,
  "Mid-Level": <UPDATED_MID_LEVEL_JSON>,
  "Low-Level": <UPDATED_LOW_LEVEL_JSON>
}
~~~

Ensure that the JSON is well-formatted and parsable.
If no changes are needed, include "I am done" before the JSON and return the previous JSON structures EXACTLY.
ONLY INCLUDE "I am done" IF YOU ARE MAKING NO MORE CHANGES.
`
