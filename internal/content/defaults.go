package content

// Default returns the built-in profile.
func Default() Profile {
	return Profile{
		Name:    "Adil Afzal",
		Title:   "Software Engineer & Creative Problem Solver",
		Tagline: "Building digital experiences with modern technologies and thoughtful design",
		About: []string{
			"A passionate software engineer dedicated to creating meaningful digital experiences through thoughtful design and innovative solutions.",
			"With expertise in modern web technologies and a keen eye for detail, I focus on building products that make a difference in people's lives.",
			"My approach combines technical excellence with user-centered design principles to deliver solutions that are both functional and delightful to use.",
		},
		Skills: []string{
			"Frontend Development",
			"Full-Stack Engineering",
			"Go & TypeScript",
			"Node.js & Python",
			"Modern CSS & Animations",
			"Performance Optimization",
			"Accessibility & UX",
			"Cloud Architecture",
		},
		Projects: []Project{
			{
				ID:    1,
				Title: "Neural Style Transfer Engine",
				Description: `Advanced deep learning system for artistic style transfer using convolutional
neural networks, with optimization algorithms for real-time style synthesis.`,
				Tags: []string{"PyTorch", "Computer Vision", "CNN", "CUDA"},
			},
			{
				ID:    2,
				Title: "Automated ML Pipeline",
				Description: `Production-grade MLOps platform with automated feature engineering, model
selection, and deployment.`,
				Tags: []string{"MLOps", "Kubernetes", "Python", "CI/CD"},
			},
			{
				ID:    3,
				Title: "NLP Research Framework",
				Description: `Research-oriented natural language processing framework for transformer
architectures, automated for reproducible experiments.`,
				Tags: []string{"Transformers", "BERT", "Hugging Face", "Research"},
			},
			{
				ID:    4,
				Title: "Reinforcement Learning Agent",
				Description: `Deep Q-learning implementation for autonomous decision-making systems with
automated training pipelines.`,
				Tags: []string{"RL", "DQN", "OpenAI Gym", "TensorFlow"},
			},
		},
		Publications: []Publication{
			{
				ID:      1,
				Title:   "Automated Feature Engineering for Deep Learning Models Using Conventional Code Practices",
				Journal: "Nature Machine Intelligence",
				Year:    "2024",
				Authors: "Adil Alizada, Dr. Elena Petrov, Michael Zhang",
				Abstract: `A framework that leverages conventional code practices to automate feature
engineering, improving accuracy while keeping ML pipelines maintainable.`,
			},
			{
				ID:      2,
				Title:   "Reproducible Machine Learning Pipelines: A Framework for Automated Experimentation",
				Journal: "International Conference on Machine Learning (ICML)",
				Year:    "2024",
				Authors: "Adil Alizada, Sarah Chen, Dr. James Rodriguez",
				Abstract: `Reproducible experimentation pipelines built on automation, giving consistent
results across environments with far less manual intervention.`,
			},
			{
				ID:      3,
				Title:   "Efficient Neural Architecture Search with Automated Hyperparameter Optimization",
				Journal: "IEEE Transactions on Neural Networks and Learning Systems",
				Year:    "2023",
				Authors: "Adil Alizada, Dr. Maria Thompson, Alex Kim, Prof. David Liu",
				Abstract: `Neural architecture search combined with automated hyperparameter optimization,
cutting compute cost on computer vision benchmarks.`,
			},
		},
		Email: "adil.afzal@example.com",
		Links: []Link{
			{Label: "LinkedIn", URL: "https://linkedin.com/in/adilafzal", Icon: "💼"},
			{Label: "GitHub", URL: "https://github.com/adilafzal", Icon: "🔗"},
		},
	}
}
