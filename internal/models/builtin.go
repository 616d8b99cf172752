package models

const (
	cartTemp   = "mp*l*w^2*sin(q)/(mc + mp)"
	cartThetaA = "(g*sin(q) - cos(q)*" + cartTemp + ") / (l*(4/3 - mp*cos(q)^2/(mc + mp)))"
	cartXA     = cartTemp + " - mp*l*cos(q)/(mc + mp)*(" + cartThetaA + ")"

	dpDen1   = "((m1 + m2)*l1 - m2*l1*cos(q2 - q1)^2)"
	dpAlpha1 = "(m2*l1*w1^2*sin(q2 - q1)*cos(q2 - q1) + m2*g*sin(q2)*cos(q2 - q1)" +
		" + m2*l2*w2^2*sin(q2 - q1) - (m1 + m2)*g*sin(q1)) / " + dpDen1
	dpAlpha2 = "(-m2*l2*w2^2*sin(q2 - q1)*cos(q2 - q1) + (m1 + m2)*g*sin(q1)*cos(q2 - q1)" +
		" - (m1 + m2)*l1*w1^2*sin(q2 - q1) - (m1 + m2)*g*sin(q2)) / (l2/l1*" + dpDen1 + ")"
)

func builtins() []*Model {
	return []*Model{
		{
			Name:        "pendulum",
			Description: "damped simple pendulum",
			States:      []string{"q", "w"},
			Params:      map[string]float64{"g": 9.81, "l": 1, "c": 0.1},
			Equations:   []string{"w", "-g/l*sin(q) - c*w"},
			Points:      map[string][]string{"inverted": {"pi", "0"}},
		},
		{
			Name:        "spring_mass",
			Description: "damped linear oscillator",
			States:      []string{"x", "v"},
			Params:      map[string]float64{"k": 4, "m": 1, "c": 0.2},
			Equations:   []string{"v", "(-k*x - c*v)/m"},
		},
		{
			Name:        "cartpole",
			Description: "unactuated pole on a free cart",
			States:      []string{"x", "v", "q", "w"},
			Params:      map[string]float64{"mc": 1, "mp": 0.1, "l": 1, "g": 9.81},
			Equations:   []string{"v", cartXA, "w", cartThetaA},
			Points:      map[string][]string{"hanging": {"0", "0", "pi", "0"}},
		},
		{
			Name:        "duffing",
			Description: "unforced double-well Duffing oscillator",
			States:      []string{"x", "v"},
			Params:      map[string]float64{"alpha": -1, "beta": 1, "delta": 0.3},
			Equations:   []string{"v", "-delta*v - alpha*x - beta*x^3"},
			Points: map[string][]string{
				"right_well": {"sqrt(-alpha/beta)", "0"},
				"left_well":  {"-sqrt(-alpha/beta)", "0"},
			},
		},
		{
			Name:        "vanderpol",
			Description: "Van der Pol oscillator",
			States:      []string{"x", "y"},
			Params:      map[string]float64{"mu": 1},
			Equations:   []string{"y", "mu*(1 - x^2)*y - x"},
		},
		{
			Name:        "double_pendulum",
			Description: "frictionless double pendulum",
			States:      []string{"q1", "q2", "w1", "w2"},
			Params:      map[string]float64{"m1": 1, "m2": 1, "l1": 1, "l2": 1, "g": 9.81},
			Equations:   []string{"w1", "w2", dpAlpha1, dpAlpha2},
			Points:      map[string][]string{"upright": {"pi", "pi", "0", "0"}},
		},
	}
}
